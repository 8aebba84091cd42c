package book_slot

import (
	"context"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/internal/service/testdrives/models"
)

// TestDriveService сервис тест-драйвов, который проверяет и сохраняет бронирование
type TestDriveService interface {
	CreatePublicBooking(ctx context.Context, req *models.CreatePublicBookingRequest) (*models.TestDriveResponse, error)
}

// SlotService протокол удержания слотов
type SlotService interface {
	MarkBooked(ctx context.Context, key domain.SlotKey)
	ReleaseAfterFailedBooking(ctx context.Context, key domain.SlotKey, connID string) bool
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
