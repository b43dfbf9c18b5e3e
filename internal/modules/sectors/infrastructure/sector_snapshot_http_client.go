package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hospitalSectorsWs/internal/modules/sectors/application/port"
	"hospitalSectorsWs/internal/modules/sectors/domain"
)

const DefaultSnapshotPathTemplate = "/api/v1/snapshot/hospital/%s/sectors"

// SectorSnapshotHTTPClient implements SectorSnapshotFetcher against the backend snapshot endpoint.
type SectorSnapshotHTTPClient struct {
	rest         *RESTClient
	timeout      time.Duration
	pathTemplate string
}

func NewSectorSnapshotHTTPClient(rest *RESTClient, pathTemplate string, timeout time.Duration) *SectorSnapshotHTTPClient {
	template := strings.TrimSpace(pathTemplate)
	if strings.Count(template, "%s") != 1 {
		template = DefaultSnapshotPathTemplate
	}
	return &SectorSnapshotHTTPClient{rest: rest, timeout: timeoutOrDefault(timeout), pathTemplate: template}
}

func (c *SectorSnapshotHTTPClient) snapshotPath(hospitalID string) (string, error) {
	identifier := strings.TrimSpace(hospitalID)
	if identifier == "" {
		return "", port.ErrSnapshotNotFound
	}
	return fmt.Sprintf(c.pathTemplate, url.PathEscape(identifier)), nil
}

func (c *SectorSnapshotHTTPClient) FetchHospitalSectors(ctx context.Context, hospitalID string) (domain.RawSnapshot, error) {
	path, err := c.snapshotPath(hospitalID)
	if err != nil {
		return domain.RawSnapshot{}, err
	}
	slog.Info("sector snapshot fetch start", slog.String("hospitalId", strings.TrimSpace(hospitalID)))

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.rest.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		slog.Error("sector snapshot request build failed", slog.String("path", path), slog.Any("error", err))
		return domain.RawSnapshot{}, err
	}
	slog.Debug("sector snapshot request", slog.String("url", req.URL.String()))

	res, err := c.rest.Do(req)
	if err != nil {
		slog.Error("sector snapshot request error", slog.String("path", path), slog.Any("error", err))
		return domain.RawSnapshot{}, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer res.Body.Close()
	slog.Debug("sector snapshot response", slog.Int("status", res.StatusCode), slog.String("url", req.URL.String()))

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return domain.RawSnapshot{}, port.ErrSnapshotForbidden
	case res.StatusCode == http.StatusNotFound:
		return domain.RawSnapshot{}, port.ErrSnapshotNotFound
	case res.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		slog.Error("sector snapshot unexpected status", slog.Int("status", res.StatusCode), slog.String("url", req.URL.String()), slog.String("body", strings.TrimSpace(string(body))))
		return domain.RawSnapshot{}, fmt.Errorf("unexpected snapshot response %d", res.StatusCode)
	}

	return decodeSectorSnapshot(res.Body)
}
