package testdrives

import "errors"

var (
	// ErrTestDriveNotFound возвращается, когда тест-драйв не найден
	ErrTestDriveNotFound = errors.New("test drive not found")

	// ErrInvalidTransition возвращается, когда текущий статус не допускает действия
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrValidation возвращается при некорректных данных бронирования
	ErrValidation = errors.New("validation failed")

	// ErrSlotNotAvailable возвращается, когда слот уже занят активным тест-драйвом
	ErrSlotNotAvailable = errors.New("slot is not available")

	// ErrProductNotAvailable возвращается, когда продукт недоступен для тест-драйва у дилера
	ErrProductNotAvailable = errors.New("product is not available for test drive")

	// ErrInvalidTimeRange возвращается при некорректном временном диапазоне
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
