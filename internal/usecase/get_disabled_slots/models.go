package get_disabled_slots

import "time"

// Request модель запроса недоступных слотов
type Request struct {
	DealerID  int64
	ProductID int64
	From      time.Time // включительно
	To        time.Time // включительно
}

// Response недоступные моменты: сначала забронированные, затем удерживаемые.
// Повторы не удаляются.
type Response struct {
	Slots []time.Time
}
