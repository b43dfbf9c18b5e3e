package handler

import (
	"context"
	"log/slog"
	"strings"

	"hospitalSectorsWs/internal/modules/sectors/application/usecase"
	"hospitalSectorsWs/internal/modules/sectors/domain"
)

// SnapshotEventsHandler refreshes cached hospital snapshots when the backend announces
// that a snapshot changed, and pushes the result to websocket subscribers.
type SnapshotEventsHandler struct {
	kafkaTopic     string
	allowedActions map[string]struct{}
	snapshots      *usecase.SectorSnapshotService
	broadcastUC    *usecase.BroadcastUseCase
}

func NewSnapshotEventsHandler(kafkaTopic string, allowedActions []string, snapshots *usecase.SectorSnapshotService, broadcastUC *usecase.BroadcastUseCase) *SnapshotEventsHandler {
	actionSet := make(map[string]struct{}, len(allowedActions))
	for _, a := range allowedActions {
		if v := strings.TrimSpace(strings.ToLower(a)); v != "" {
			actionSet[v] = struct{}{}
		}
	}
	return &SnapshotEventsHandler{
		kafkaTopic:     strings.TrimSpace(kafkaTopic),
		allowedActions: actionSet,
		snapshots:      snapshots,
		broadcastUC:    broadcastUC,
	}
}

func (h *SnapshotEventsHandler) Topic() string { return h.kafkaTopic }

func (h *SnapshotEventsHandler) Handle(ctx context.Context, msg *domain.Message) error {
	if msg == nil || h.snapshots == nil {
		return nil
	}
	if len(h.allowedActions) > 0 {
		if _, ok := h.allowedActions[strings.ToLower(strings.TrimSpace(msg.Action))]; !ok {
			slog.Debug("snapshot-events action ignored", slog.String("topic", h.kafkaTopic), slog.String("action", msg.Action))
			return nil
		}
	}

	hospitalID := msg.HospitalID()
	if hospitalID == "" {
		slog.Info("snapshot-events refresh all hospitals", slog.String("topic", h.kafkaTopic), slog.String("action", msg.Action))
		h.snapshots.RefreshAll(ctx, h.broadcastUC)
		return nil
	}

	slog.Info("snapshot-events refresh", slog.String("topic", h.kafkaTopic), slog.String("action", msg.Action), slog.String("hospitalId", hospitalID))
	if _, err := h.snapshots.Refresh(ctx, hospitalID, h.broadcastUC); err != nil {
		// The error was already pushed to subscribers; the consumer keeps going.
		slog.Warn("snapshot-events refresh failed", slog.String("hospitalId", hospitalID), slog.Any("error", err))
	}
	return nil
}
