package create_test_drive

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TestDriveService/internal/api/handlers"
	bookSlot "github.com/m04kA/SMC-TestDriveService/internal/usecase/book_slot"
	"github.com/m04kA/SMC-TestDriveService/pkg/types"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgAmbiguousDate       = "дата тест-драйва должна содержать часовой пояс (RFC 3339, например 2025-01-10T09:00:00Z)"
	msgInvalidDate         = "некорректный формат даты тест-драйва"
	msgSlotNotAvailable    = "выбранное время уже занято"
	msgProductNotAvailable = "модель недоступна для тест-драйва у этого дилера"
)

type Handler struct {
	useCase BookSlotUseCase
	logger  Logger
}

func NewHandler(useCase BookSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/test-drives
// Публичное бронирование без предварительного удержания слота
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateTestDriveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /test-drives - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /test-drives - Failed to parse scheduledDate %q: %v", req.ScheduledDate, err)
		if errors.Is(err, types.ErrAmbiguousTimestamp) {
			handlers.RespondBadRequest(w, msgAmbiguousDate)
		} else {
			handlers.RespondBadRequest(w, msgInvalidDate)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, bookSlot.ErrInvalidInput):
			h.logger.Warn("POST /test-drives - Invalid input: dealer_id=%d, product_id=%d: %v", req.DealerID, req.ProductID, err)
			handlers.RespondBadRequest(w, result.Error)

		case errors.Is(err, bookSlot.ErrSlotNotAvailable):
			h.logger.Warn("POST /test-drives - Slot not available: dealer_id=%d, product_id=%d, at=%s",
				req.DealerID, req.ProductID, req.ScheduledDate)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, bookSlot.ErrProductNotAvailable):
			h.logger.Warn("POST /test-drives - Product not available: dealer_id=%d, product_id=%d", req.DealerID, req.ProductID)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgProductNotAvailable)

		default:
			h.logger.Error("POST /test-drives - Failed to book test drive: dealer_id=%d, product_id=%d, error=%v",
				req.DealerID, req.ProductID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /test-drives - Test drive booked: test_drive_id=%d", result.TestDriveID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
