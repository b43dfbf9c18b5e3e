package usecase

import (
	"context"

	"hospitalSectorsWs/internal/modules/sectors/application/port"
	"hospitalSectorsWs/internal/modules/sectors/domain"
)

type BroadcastUseCase struct {
	broadcaster port.Broadcaster
}

func NewBroadcastUseCase(b port.Broadcaster) *BroadcastUseCase {
	return &BroadcastUseCase{broadcaster: b}
}

// Execute is a no-op without a broadcaster so the service can run headless.
func (uc *BroadcastUseCase) Execute(ctx context.Context, msg *domain.Message) {
	if uc == nil || uc.broadcaster == nil || msg == nil {
		return
	}
	uc.broadcaster.Broadcast(ctx, msg)
}
