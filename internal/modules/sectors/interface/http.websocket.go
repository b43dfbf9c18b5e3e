package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"hospitalSectorsWs/internal/modules/sectors/application/usecase"
	"hospitalSectorsWs/internal/modules/sectors/domain"
	"hospitalSectorsWs/internal/modules/sectors/infrastructure"
	"hospitalSectorsWs/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var socketTopics = []string{domain.TopicSectorsSnapshot, domain.TopicSectorsError}

// NewWebsocketHandler exposes /ws/hospitals/:hospitalId/sectors. The first messages
// are system.connected and the current snapshot; later refreshes of the hospital are
// pushed as they happen. Clients may send {"action":"refresh"} or {"action":"snapshot"}.
func NewWebsocketHandler(hub *infrastructure.Hub, snapshots *usecase.SectorSnapshotService, broadcastUC *usecase.BroadcastUseCase, validator auth.TokenValidator) echo.HandlerFunc {
	commands := newCommandProcessor(hub, snapshots, broadcastUC)
	return func(c echo.Context) error {
		hospitalID := strings.TrimSpace(c.Param("hospitalId"))
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		if hospitalID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "missing hospital id")
		}

		userID, sessionID := "", ""
		if validator != nil {
			claims, err := validator.Validate(auth.ExtractToken(c.Request(), "token"))
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				slog.Warn("ws handler missing token", slog.String("hospitalId", hospitalID), slog.String("requestId", requestID))
				return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
			case err != nil:
				slog.Warn("ws handler invalid token", slog.String("hospitalId", hospitalID), slog.String("requestId", requestID), slog.Any("error", err))
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			case !claims.CanAccessHospital(hospitalID):
				slog.Warn("ws handler hospital denied", slog.String("hospitalId", hospitalID), slog.String("userId", claims.Subject))
				return echo.NewHTTPError(http.StatusForbidden, "hospital not allowed")
			}
			userID, sessionID = claims.Subject, claims.SessionID
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws handler upgrade failed", slog.String("hospitalId", hospitalID), slog.Any("error", err))
			return err
		}

		client := infrastructure.NewClient(hub, conn, userID, sessionID, hospitalID, 16, commands)
		hub.AttachClient(client, commands.Topics())

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(&domain.Message{
			Topic:  domain.TopicSystemConnected,
			Entity: domain.SystemEntity,
			Action: domain.ActionConnected,
			Metadata: map[string]string{
				"hospitalId": hospitalID,
				"sessionId":  client.SessionID(),
			},
			Data: map[string]any{
				"hospitalId":    hospitalID,
				"allowedTopics": socketTopics,
			},
			Timestamp: time.Now().UTC(),
		})

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 15*time.Second)
		defer cancel()
		snapshot := snapshots.GetAllSnapshotHospitalSectors(ctx, hospitalID)
		client.SendDomainMessage(domain.BuildSnapshotMessage(snapshot, time.Now()))

		slog.Info("ws handler connected", slog.String("hospitalId", hospitalID), slog.String("userId", userID), slog.String("sessionId", client.SessionID()), slog.String("ip", c.RealIP()), slog.String("requestId", requestID))
		return nil
	}
}

// newCommandProcessor binds the socket commands to the snapshot service. refresh
// pushes the result, or the error, to every subscriber of the hospital; snapshot
// answers only the asking client.
func newCommandProcessor(hub *infrastructure.Hub, snapshots *usecase.SectorSnapshotService, broadcastUC *usecase.BroadcastUseCase) *infrastructure.CommandProcessor {
	return infrastructure.NewCommandProcessor(hub, socketTopics).
		OnRefresh(func(ctx context.Context, client *infrastructure.Client, _ infrastructure.Command) {
			if _, err := snapshots.Refresh(ctx, client.HospitalID(), broadcastUC); err != nil {
				slog.Warn("ws refresh failed", slog.String("hospitalId", client.HospitalID()), slog.Any("error", err))
			}
		}).
		OnSnapshot(func(ctx context.Context, client *infrastructure.Client, _ infrastructure.Command) {
			snapshot, err := snapshots.Fetch(ctx, client.HospitalID())
			if err != nil {
				client.SendDomainMessage(domain.BuildErrorMessage(client.HospitalID(), domain.ActionSnapshot, err.Error(), time.Now()))
				return
			}
			client.SendDomainMessage(domain.BuildSnapshotMessage(snapshot, time.Now()))
		})
}
