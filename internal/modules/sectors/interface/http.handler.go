package transport

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"hospitalSectorsWs/internal/modules/sectors/application/port"
	"hospitalSectorsWs/internal/modules/sectors/application/usecase"
	"hospitalSectorsWs/internal/modules/sectors/domain"
	"hospitalSectorsWs/internal/modules/sectors/infrastructure"
	"hospitalSectorsWs/internal/shared/auth"
	"hospitalSectorsWs/internal/shared/httputil"
	"hospitalSectorsWs/internal/shared/normalization"
)

// Dependencies groups what the sectors routes need. Validator is nil when auth is off.
type Dependencies struct {
	Snapshots   *usecase.SectorSnapshotService
	BroadcastUC *usecase.BroadcastUseCase
	Hub         *infrastructure.Hub
	Exporter    port.SnapshotExporter
	Validator   auth.TokenValidator
}

func newSnapshotErrorMapper() *httputil.ErrorMapper {
	return httputil.NewErrorMapper().
		WithMapping(usecase.ErrMissingHospital, http.StatusBadRequest, "missing hospital id").
		WithMapping(auth.ErrHospitalDenied, http.StatusForbidden, "hospital not allowed").
		WithMapping(port.ErrSnapshotForbidden, http.StatusForbidden, "snapshot forbidden").
		WithMapping(port.ErrSnapshotNotFound, http.StatusNotFound, "snapshot not found").
		WithMapping(domain.ErrMalformedSnapshot, http.StatusBadGateway, "malformed snapshot").
		WithDefault(http.StatusBadGateway, "snapshot backend unavailable")
}

var snapshotErrors = newSnapshotErrorMapper()

// RegisterRoutes mounts the REST, websocket and health routes.
func RegisterRoutes(e *echo.Echo, deps Dependencies) {
	e.GET("/healthz", NewHealthHandler(deps))

	api := e.Group("/api/v1")
	if deps.Validator != nil {
		api.Use(auth.Middleware(deps.Validator))
	}
	api.GET("/hospitals/:hospitalId/sectors", NewSnapshotHandler(deps.Snapshots))
	api.GET("/hospitals/:hospitalId/sectors/summary", NewSummaryHandler(deps.Snapshots))
	api.GET("/hospitals/:hospitalId/sectors/export", NewExportHandler(deps.Snapshots, deps.Exporter))
	api.POST("/hospitals/:hospitalId/sectors/refresh", NewRefreshHandler(deps.Snapshots, deps.BroadcastUC))
	api.DELETE("/sectors/cache", NewClearCacheHandler(deps.Snapshots))

	e.GET("/ws/hospitals/:hospitalId/sectors", NewWebsocketHandler(deps.Hub, deps.Snapshots, deps.BroadcastUC, deps.Validator))
}

// hospitalParam returns the path hospital id after checking the token may read it.
func hospitalParam(c echo.Context) (string, error) {
	hospitalID := strings.TrimSpace(c.Param("hospitalId"))
	if hospitalID == "" {
		return "", usecase.ErrMissingHospital
	}
	if claims := auth.ClaimsFrom(c); claims != nil && !claims.CanAccessHospital(hospitalID) {
		return "", auth.ErrHospitalDenied
	}
	return hospitalID, nil
}

func failRequest(c echo.Context, hospitalID string, err error) error {
	httpErr := snapshotErrors.HTTPError(err)
	slog.Warn("sectors http request failed",
		slog.String("path", c.Path()),
		slog.String("hospitalId", hospitalID),
		slog.Int("status", httpErr.Code),
		slog.String("requestId", c.Response().Header().Get(echo.HeaderXRequestID)),
		slog.Any("error", err),
	)
	return httpErr
}

// filterKind returns a copy of snapshot holding only one sector kind.
func filterKind(snapshot *domain.HospitalSectorSnapshot, kind string) *domain.HospitalSectorSnapshot {
	view := snapshot.Clone()
	if kind != normalization.SectorKindInternation {
		view.Internation = []domain.InternationSector{}
	}
	if kind != normalization.SectorKindAssistance {
		view.Assistance = []domain.AssistanceSector{}
	}
	if kind != normalization.SectorKindNeutral {
		view.Neutral = []domain.NeutralSector{}
	}
	return view
}

// NewSnapshotHandler serves the dashboard snapshot. By default failures answer 200
// with an empty snapshot; ?strict=true reports them as HTTP errors instead.
// ?kind= keeps a single sector kind.
func NewSnapshotHandler(snapshots *usecase.SectorSnapshotService) echo.HandlerFunc {
	return func(c echo.Context) error {
		hospitalID, err := hospitalParam(c)
		if err != nil {
			return failRequest(c, hospitalID, err)
		}

		kind := ""
		if raw := strings.TrimSpace(c.QueryParam("kind")); raw != "" {
			if kind = normalization.NormalizeSectorKind(raw); kind == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "unknown sector kind "+raw+", want one of "+strings.Join(normalization.AllSectorKinds(), ", "))
			}
		}

		var snapshot *domain.HospitalSectorSnapshot
		if strict, _ := strconv.ParseBool(c.QueryParam("strict")); strict {
			snapshot, err = snapshots.Fetch(c.Request().Context(), hospitalID)
			if err != nil {
				return failRequest(c, hospitalID, err)
			}
		} else {
			snapshot = snapshots.GetAllSnapshotHospitalSectors(c.Request().Context(), hospitalID)
		}

		if kind != "" {
			snapshot = filterKind(snapshot, kind)
		}
		return c.JSON(http.StatusOK, snapshot)
	}
}

func NewSummaryHandler(snapshots *usecase.SectorSnapshotService) echo.HandlerFunc {
	return func(c echo.Context) error {
		hospitalID, err := hospitalParam(c)
		if err != nil {
			return failRequest(c, hospitalID, err)
		}
		summary, err := snapshots.Summary(c.Request().Context(), hospitalID)
		if err != nil {
			return failRequest(c, hospitalID, err)
		}
		return c.JSON(http.StatusOK, summary)
	}
}

func NewExportHandler(snapshots *usecase.SectorSnapshotService, exporter port.SnapshotExporter) echo.HandlerFunc {
	return func(c echo.Context) error {
		if exporter == nil {
			return echo.NewHTTPError(http.StatusNotImplemented, "export not configured")
		}
		hospitalID, err := hospitalParam(c)
		if err != nil {
			return failRequest(c, hospitalID, err)
		}
		snapshot, err := snapshots.Fetch(c.Request().Context(), hospitalID)
		if err != nil {
			return failRequest(c, hospitalID, err)
		}

		var buf bytes.Buffer
		if err := exporter.Export(&buf, snapshot); err != nil {
			slog.Error("sectors export failed", slog.String("hospitalId", hospitalID), slog.Any("error", err))
			return echo.NewHTTPError(http.StatusInternalServerError, "export failed")
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+exporter.FileName(hospitalID)+`"`)
		return c.Blob(http.StatusOK, exporter.ContentType(), buf.Bytes())
	}
}

func NewRefreshHandler(snapshots *usecase.SectorSnapshotService, broadcastUC *usecase.BroadcastUseCase) echo.HandlerFunc {
	return func(c echo.Context) error {
		hospitalID, err := hospitalParam(c)
		if err != nil {
			return failRequest(c, hospitalID, err)
		}
		snapshot, err := snapshots.Refresh(c.Request().Context(), hospitalID, broadcastUC)
		if err != nil {
			return failRequest(c, hospitalID, err)
		}
		return c.JSON(http.StatusOK, snapshot)
	}
}

// NewClearCacheHandler drops every cached snapshot. With auth enabled only admins may call it.
func NewClearCacheHandler(snapshots *usecase.SectorSnapshotService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims := auth.ClaimsFrom(c); claims != nil && !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		snapshots.ClearSectorsCache()
		return c.NoContent(http.StatusNoContent)
	}
}

type healthResponse struct {
	Status          string   `json:"status"`
	Clients         int      `json:"clients"`
	CachedHospitals []string `json:"cachedHospitals"`
}

func NewHealthHandler(deps Dependencies) echo.HandlerFunc {
	return func(c echo.Context) error {
		res := healthResponse{Status: "ok", CachedHospitals: []string{}}
		if deps.Hub != nil {
			res.Clients = deps.Hub.ClientCount("")
		}
		if deps.Snapshots != nil {
			if ids := deps.Snapshots.CachedHospitalIDs(); ids != nil {
				res.CachedHospitals = ids
			}
		}
		return c.JSON(http.StatusOK, res)
	}
}
