package get_disabled_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TestDriveService/internal/api/handlers"
	getDisabledSlots "github.com/m04kA/SMC-TestDriveService/internal/usecase/get_disabled_slots"
	"github.com/m04kA/SMC-TestDriveService/pkg/types"
)

const (
	msgInvalidDealerID  = "некорректный ID дилера"
	msgInvalidProductID = "некорректный ID модели"
	msgMissingRange     = "параметры from и to обязательны"
	msgAmbiguousRange   = "границы диапазона должны быть датой YYYY-MM-DD или временем с часовым поясом"
	msgInvalidRange     = "некорректный диапазон дат"
)

type Handler struct {
	useCase GetDisabledSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetDisabledSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/dealers/{dealerId}/products/{productId}/disabled-slots?from=&to=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	dealerID, err := strconv.ParseInt(vars["dealerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /disabled-slots - Invalid dealer ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDealerID)
		return
	}

	productID, err := strconv.ParseInt(vars["productId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /disabled-slots - Invalid product ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProductID)
		return
	}

	query := r.URL.Query()
	fromStr, toStr := query.Get("from"), query.Get("to")
	if fromStr == "" || toStr == "" {
		handlers.RespondBadRequest(w, msgMissingRange)
		return
	}

	from, errFrom := types.ParseRangeBound(fromStr)
	to, errTo := types.ParseRangeBound(toStr)
	if err := errors.Join(errFrom, errTo); err != nil {
		h.logger.Warn("GET /disabled-slots - Invalid range from=%q to=%q: %v", fromStr, toStr, err)
		if errors.Is(err, types.ErrAmbiguousTimestamp) {
			handlers.RespondBadRequest(w, msgAmbiguousRange)
		} else {
			handlers.RespondBadRequest(w, msgInvalidRange)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), &getDisabledSlots.Request{
		DealerID:  dealerID,
		ProductID: productID,
		From:      from,
		To:        to,
	})
	if err != nil {
		if errors.Is(err, getDisabledSlots.ErrInvalidInput) {
			h.logger.Warn("GET /disabled-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRange)
			return
		}
		h.logger.Error("GET /disabled-slots - Failed to get disabled slots: dealer_id=%d, product_id=%d, error=%v",
			dealerID, productID, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(dealerID, productID, result))
}
