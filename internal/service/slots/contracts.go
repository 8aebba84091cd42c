package slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/internal/infra/holds"
)

// HoldStore хранилище удержаний слотов
type HoldStore interface {
	TryHold(key domain.SlotKey, holderID string, ttl time.Duration) (domain.Hold, holds.Outcome)
	Release(key domain.SlotKey, holderID string) bool
	Remove(key domain.SlotKey) bool
	ReleaseAllForHolder(holderID string) []domain.SlotKey
	SweepExpired() int
	ListHeldInRange(dealerID, productID int64, from, to time.Time) []time.Time
	Len() int
}

// GroupRegistry подписки соединений на группы (дилер, продукт)
type GroupRegistry interface {
	Join(group domain.GroupKey, connID string) bool
	Leave(group domain.GroupKey, connID string) bool
	LeaveAll(connID string) []domain.GroupKey
}

// Notifier доставляет событие всем участникам группы.
// Доставка fire-and-forget: Notify не блокируется на медленных получателях.
type Notifier interface {
	Notify(ctx context.Context, group domain.GroupKey, event domain.SlotEvent)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
