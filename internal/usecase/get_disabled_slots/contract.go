package get_disabled_slots

import (
	"context"
	"time"
)

// TestDriveService источник забронированных моментов
type TestDriveService interface {
	GetScheduledInRange(ctx context.Context, dealerID, productID int64, from, to time.Time) ([]time.Time, error)
}

// SlotService источник удерживаемых моментов
type SlotService interface {
	HeldInRange(dealerID, productID int64, from, to time.Time) []time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
