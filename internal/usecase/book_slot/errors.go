package book_slot

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных данных бронирования
	ErrInvalidInput = errors.New("book_slot: invalid input data")

	// ErrSlotNotAvailable возвращается, когда слот уже забронирован
	ErrSlotNotAvailable = errors.New("book_slot: slot is not available")

	// ErrProductNotAvailable возвращается, когда продукт недоступен для тест-драйва
	ErrProductNotAvailable = errors.New("book_slot: product is not available for test drive")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_slot: internal error")
)
