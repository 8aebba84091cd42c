package realtime

import (
	"context"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	bookSlot "github.com/m04kA/SMC-TestDriveService/internal/usecase/book_slot"
	getDisabledSlots "github.com/m04kA/SMC-TestDriveService/internal/usecase/get_disabled_slots"
)

// SlotService протокол удержания слотов
type SlotService interface {
	JoinGroup(dealerID, productID int64, connID string)
	LeaveGroup(dealerID, productID int64, connID string)
	HoldSlot(ctx context.Context, key domain.SlotKey, connID string) bool
	ReleaseSlot(ctx context.Context, key domain.SlotKey, connID string) bool
	Disconnect(ctx context.Context, connID string)
}

type BookSlotUseCase interface {
	Execute(ctx context.Context, req *bookSlot.Request) (*bookSlot.Response, error)
}

type GetDisabledSlotsUseCase interface {
	Execute(ctx context.Context, req *getDisabledSlots.Request) (*getDisabledSlots.Response, error)
}

// GroupMembers участники группы на момент рассылки
type GroupMembers interface {
	Members(group domain.GroupKey) []string
}

type Logger interface {
	Debug(format string, v ...interface{})
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
