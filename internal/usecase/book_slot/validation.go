package book_slot

import "fmt"

// validateRequest проверяет обязательные поля; остальное проверяет сервис тест-драйвов
func validateRequest(req *Request) error {
	if req.DealerID <= 0 {
		return fmt.Errorf("%w: dealerId must be positive", ErrInvalidInput)
	}

	if req.ProductID <= 0 {
		return fmt.Errorf("%w: productId must be positive", ErrInvalidInput)
	}

	if req.ScheduledDate.IsZero() {
		return fmt.Errorf("%w: scheduledDate is required", ErrInvalidInput)
	}

	return nil
}
