package realtime

import (
	"encoding/json"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/pkg/types"
)

// Методы, которые клиент вызывает через соединение
const (
	MethodJoinGroup        = "JoinGroup"
	MethodLeaveGroup       = "LeaveGroup"
	MethodHoldSlot         = "HoldSlot"
	MethodReleaseSlot      = "ReleaseSlot"
	MethodBookSlot         = "BookSlot"
	MethodGetDisabledSlots = "GetDisabledSlots"
)

// requestFrame вызов метода. id возвращается в ответе как есть.
type requestFrame struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type replyFrame struct {
	ID     json.RawMessage `json:"id"`
	Result any             `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// eventFrame событие слота, рассылаемое группе
type eventFrame struct {
	Event         domain.SlotEventType `json:"event"`
	DealerID      int64                `json:"dealerId"`
	ProductID     int64                `json:"productId"`
	ScheduledDate string               `json:"scheduledDate"`
}

func newEventFrame(event domain.SlotEvent) eventFrame {
	return eventFrame{
		Event:         event.Type,
		DealerID:      event.DealerID,
		ProductID:     event.ProductID,
		ScheduledDate: types.FormatInstant(event.ScheduledDate),
	}
}

type groupParams struct {
	DealerID  int64 `json:"dealerId" validate:"required,gt=0"`
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

type slotParams struct {
	DealerID      int64  `json:"dealerId" validate:"required,gt=0"`
	ProductID     int64  `json:"productId" validate:"required,gt=0"`
	ScheduledDate string `json:"scheduledDate" validate:"required"`
}

type bookParams struct {
	CustomerName  string  `json:"customerName"`
	CustomerPhone string  `json:"customerPhone"`
	CustomerEmail string  `json:"customerEmail"`
	Notes         *string `json:"notes,omitempty"`
	ProductID     int64   `json:"productId"`
	DealerID      int64   `json:"dealerId"`
	ScheduledDate string  `json:"scheduledDate" validate:"required"`
}

type rangeParams struct {
	DealerID  int64  `json:"dealerId" validate:"required,gt=0"`
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	From      string `json:"from" validate:"required"`
	To        string `json:"to" validate:"required"`
}

// bookResult результат BookSlot
type bookResult struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	TestDriveID   int64  `json:"testDriveId,omitempty"`
	ScheduledDate string `json:"scheduledDate,omitempty"`
}
