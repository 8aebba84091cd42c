package testdrives

import (
	"context"
	"time"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	testdriveRepo "github.com/m04kA/SMC-TestDriveService/internal/infra/storage/testdrive"
	"github.com/m04kA/SMC-TestDriveService/internal/integrations/catalogservice"
)

// TestDriveRepository интерфейс репозитория тест-драйвов
type TestDriveRepository interface {
	Create(ctx context.Context, td *domain.TestDrive) (*domain.TestDrive, error)
	GetByID(ctx context.Context, id int64) (*domain.TestDrive, error)
	GetScheduledInRange(ctx context.Context, dealerID, productID int64, from, to time.Time) ([]time.Time, error)
	HasActiveAt(ctx context.Context, slot domain.SlotKey) (bool, error)
	Transition(ctx context.Context, p testdriveRepo.TransitionParams) (*domain.TestDrive, error)
}

// CatalogServiceClient интерфейс клиента каталога продуктов
type CatalogServiceClient interface {
	GetProductWithGracefulDegradation(ctx context.Context, dealerID, productID int64) (*catalogservice.Product, error)
}

// EventPublisher публикует события жизненного цикла тест-драйва
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальная реализация TimeProvider
type RealTimeProvider struct{}

func (r *RealTimeProvider) Now() time.Time {
	return time.Now().UTC()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
