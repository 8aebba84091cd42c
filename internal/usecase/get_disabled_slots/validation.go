package get_disabled_slots

import (
	"fmt"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.DealerID <= 0 {
		return fmt.Errorf("%w: dealerId must be positive", ErrInvalidInput)
	}

	if req.ProductID <= 0 {
		return fmt.Errorf("%w: productId must be positive", ErrInvalidInput)
	}

	if req.From.IsZero() || req.To.IsZero() {
		return fmt.Errorf("%w: from and to are required", ErrInvalidInput)
	}

	if req.To.Before(req.From) {
		return fmt.Errorf("%w: to must not be before from", ErrInvalidInput)
	}

	if req.To.Sub(req.From) > domain.MaxDisabledSlotsRange {
		return fmt.Errorf("%w: range must not exceed %d days", ErrInvalidInput, int(domain.MaxDisabledSlotsRange.Hours()/24))
	}

	return nil
}
