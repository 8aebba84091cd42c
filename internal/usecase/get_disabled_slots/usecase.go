package get_disabled_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TestDriveService/pkg/types"
)

// UseCase use case получения недоступных слотов пары (дилер, продукт)
type UseCase struct {
	testDrives TestDriveService
	slots      SlotService
	logger     Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(testDrives TestDriveService, slots SlotService, logger Logger) *UseCase {
	return &UseCase{
		testDrives: testDrives,
		slots:      slots,
		logger:     logger,
	}
}

// Execute объединяет забронированные и удерживаемые моменты в [From, To]
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetDisabledSlots: validation failed: %v", err)
		return nil, err
	}

	from := types.NormalizeUTC(req.From)
	to := types.NormalizeUTC(req.To)

	// 2. Забронированные
	booked, err := uc.testDrives.GetScheduledInRange(ctx, req.DealerID, req.ProductID, from, to)
	if err != nil {
		uc.logger.Error("GetDisabledSlots: failed to get booked slots for dealer=%d product=%d: %v",
			req.DealerID, req.ProductID, err)
		return nil, fmt.Errorf("%w: GetScheduledInRange: %v", ErrInternal, err)
	}

	// 3. Удерживаемые (с ленивой очисткой истекших)
	held := uc.slots.HeldInRange(req.DealerID, req.ProductID, from, to)

	slots := make([]time.Time, 0, len(booked)+len(held))
	for _, at := range booked {
		slots = append(slots, types.NormalizeUTC(at))
	}
	slots = append(slots, held...)

	return &Response{Slots: slots}, nil
}
