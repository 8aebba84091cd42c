package domain

import (
	"time"

	"github.com/m04kA/SMC-TestDriveService/pkg/types"
)

// GroupKey группа подписчиков на события слотов пары (дилер, продукт)
type GroupKey struct {
	DealerID  int64
	ProductID int64
}

// SlotKey бронируемая единица: (дилер, продукт, момент начала в UTC).
// Сравнение точное, без допусков.
type SlotKey struct {
	DealerID  int64
	ProductID int64
	At        time.Time
}

// NewSlotKey создает ключ слота, нормализуя время к UTC
func NewSlotKey(dealerID, productID int64, at time.Time) SlotKey {
	return SlotKey{
		DealerID:  dealerID,
		ProductID: productID,
		At:        types.NormalizeUTC(at),
	}
}

// Group группа, которой рассылаются события по этому слоту
func (k SlotKey) Group() GroupKey {
	return GroupKey{DealerID: k.DealerID, ProductID: k.ProductID}
}

// Hold кратковременное рекомендательное удержание слота
type Hold struct {
	Key       SlotKey
	HolderID  string // идентификатор соединения
	ExpiresAt time.Time
}

// IsExpired удержание истекает ровно в ExpiresAt (now >= ExpiresAt)
func (h Hold) IsExpired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// IsHeldBy принадлежит ли удержание holderID
func (h Hold) IsHeldBy(holderID string) bool {
	return h.HolderID == holderID
}

// SlotEventType тип события, рассылаемого группе
type SlotEventType string

const (
	SlotHeld     SlotEventType = "SlotHeld"
	SlotReleased SlotEventType = "SlotReleased"
	SlotBooked   SlotEventType = "SlotBooked"
)

// SlotEvent событие о состоянии слота
type SlotEvent struct {
	Type          SlotEventType
	DealerID      int64
	ProductID     int64
	ScheduledDate time.Time
}

// NewSlotEvent создает событие для слота
func NewSlotEvent(eventType SlotEventType, key SlotKey) SlotEvent {
	return SlotEvent{
		Type:          eventType,
		DealerID:      key.DealerID,
		ProductID:     key.ProductID,
		ScheduledDate: key.At,
	}
}
