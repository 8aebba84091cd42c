package domain

import "time"

// TestDriveStatus статус тест-драйва
type TestDriveStatus string

const (
	TestDriveStatusPending      TestDriveStatus = "pending"
	TestDriveStatusConfirmed    TestDriveStatus = "confirmed"
	TestDriveStatusSuccessfully TestDriveStatus = "successfully"
	TestDriveStatusFailed       TestDriveStatus = "failed"
	TestDriveStatusCanceled     TestDriveStatus = "canceled"
)

// TestDrive запись тест-драйва, созданная клиентом через публичное бронирование
type TestDrive struct {
	ID            int64
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	ProductID     int64
	DealerID      int64
	ScheduledDate time.Time // момент начала, UTC
	Notes         *string
	Status        TestDriveStatus

	StaffNote   *string // комментарий сотрудника при завершении
	CompletedAt *time.Time
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive возвращает true, если тест-драйв занимает слот
func (t *TestDrive) IsActive() bool {
	return t.Status == TestDriveStatusPending || t.Status == TestDriveStatusConfirmed
}

// CanCreateCustomer успешный тест-драйв позволяет завести постоянного клиента по контактам
func (t *TestDrive) CanCreateCustomer() bool {
	return t.Status == TestDriveStatusSuccessfully
}

// Slot ключ слота, который занимает тест-драйв
func (t *TestDrive) Slot() SlotKey {
	return NewSlotKey(t.DealerID, t.ProductID, t.ScheduledDate)
}

// transitions допустимые переходы: pending -> confirmed -> successfully|failed; pending|confirmed -> canceled
var transitions = map[TestDriveStatus][]TestDriveStatus{
	TestDriveStatusPending:   {TestDriveStatusConfirmed, TestDriveStatusCanceled},
	TestDriveStatusConfirmed: {TestDriveStatusSuccessfully, TestDriveStatusFailed, TestDriveStatusCanceled},
}

// CanTransitionTo проверяет допустимость перехода в статус next
func (s TestDriveStatus) CanTransitionTo(next TestDriveStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid проверяет, что статус известен
func (s TestDriveStatus) IsValid() bool {
	switch s {
	case TestDriveStatusPending, TestDriveStatusConfirmed, TestDriveStatusSuccessfully,
		TestDriveStatusFailed, TestDriveStatusCanceled:
		return true
	}
	return false
}

// SourceStatuses возвращает статусы, из которых достижим next.
// Используется для условного UPDATE в репозитории.
func SourceStatuses(next TestDriveStatus) []TestDriveStatus {
	sources := make([]TestDriveStatus, 0, 2)
	for _, from := range []TestDriveStatus{TestDriveStatusPending, TestDriveStatusConfirmed} {
		if from.CanTransitionTo(next) {
			sources = append(sources, from)
		}
	}
	return sources
}
