package domain

import "time"

// Значения по умолчанию
const (
	DefaultHoldTTL                 = 3 * time.Minute
	DefaultHoldShards              = 32
	DefaultMinBookingNoticeMinutes = 60 // 1 час
	DefaultAdvanceBookingDays      = 30
)

// Ограничения валидации
const (
	MaxCustomerNameLength = 200
	MaxNotesLength        = 1000
	MaxStaffNoteLength    = 1000
	MaxDisabledSlotsRange = 31 * 24 * time.Hour
)

// ActiveStatuses статусы, при которых тест-драйв занимает слот
var ActiveStatuses = []TestDriveStatus{
	TestDriveStatusPending,
	TestDriveStatusConfirmed,
}
