package events

import (
	"time"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
)

// Ключи маршрутизации событий жизненного цикла тест-драйва
const (
	RKTestDriveBooked    = "testdrive.booked"
	RKTestDriveConfirmed = "testdrive.confirmed"
	RKTestDriveCompleted = "testdrive.completed"
	RKTestDriveCanceled  = "testdrive.canceled"
)

// TestDriveEvent полезная нагрузка события тест-драйва
type TestDriveEvent struct {
	TestDriveID   int64     `json:"test_drive_id"`
	DealerID      int64     `json:"dealer_id"`
	ProductID     int64     `json:"product_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Status        string    `json:"status"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email"`
	// CanCreateCustomer true после успешного тест-драйва
	CanCreateCustomer bool      `json:"can_create_customer"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// NewTestDriveEvent собирает событие из доменной модели
func NewTestDriveEvent(td *domain.TestDrive, occurredAt time.Time) TestDriveEvent {
	return TestDriveEvent{
		TestDriveID:       td.ID,
		DealerID:          td.DealerID,
		ProductID:         td.ProductID,
		ScheduledDate:     td.ScheduledDate.UTC(),
		Status:            string(td.Status),
		CustomerName:      td.CustomerName,
		CustomerPhone:     td.CustomerPhone,
		CustomerEmail:     td.CustomerEmail,
		CanCreateCustomer: td.CanCreateCustomer(),
		OccurredAt:        occurredAt.UTC(),
	}
}

// RoutingKeyFor ключ маршрутизации для статуса тест-драйва
func RoutingKeyFor(status domain.TestDriveStatus) string {
	switch status {
	case domain.TestDriveStatusConfirmed:
		return RKTestDriveConfirmed
	case domain.TestDriveStatusSuccessfully, domain.TestDriveStatusFailed:
		return RKTestDriveCompleted
	case domain.TestDriveStatusCanceled:
		return RKTestDriveCanceled
	default:
		return RKTestDriveBooked
	}
}
