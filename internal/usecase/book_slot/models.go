package book_slot

import "time"

// Request модель запроса на бронирование слота
type Request struct {
	// RequesterID соединение, которое могло удерживать слот; пусто для HTTP
	RequesterID string

	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Notes         *string
	ProductID     int64
	DealerID      int64
	ScheduledDate time.Time
}

// Response результат бронирования. При Success=false заполнено Error.
type Response struct {
	Success       bool
	Error         string
	TestDriveID   int64
	ScheduledDate time.Time // UTC
}
