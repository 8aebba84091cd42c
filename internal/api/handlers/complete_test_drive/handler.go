package complete_test_drive

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TestDriveService/internal/api/handlers"
	"github.com/m04kA/SMC-TestDriveService/internal/api/middleware"
	"github.com/m04kA/SMC-TestDriveService/internal/service/testdrives"
)

const (
	msgInvalidTestDriveID = "некорректный ID тест-драйва"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingIsSuccess   = "поле isSuccess обязательно"
	msgInvalidNote        = "комментарий слишком длинный"
	msgNotFound           = "тест-драйв не найден"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidTransition  = "завершить можно только подтвержденный тест-драйв"
)

type Handler struct {
	service TestDriveService
	logger  Logger
}

func NewHandler(service TestDriveService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/test-drives/{testDriveId}/complete
// confirmed -> successfully | failed
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	testDriveID, err := strconv.ParseInt(mux.Vars(r)["testDriveId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /test-drives/{id}/complete - Invalid test drive ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTestDriveID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /test-drives/{id}/complete - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CompleteTestDriveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /test-drives/{id}/complete - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.IsSuccess == nil {
		handlers.RespondBadRequest(w, msgMissingIsSuccess)
		return
	}

	testDrive, err := h.service.Complete(r.Context(), testDriveID, req.ToServiceRequest())
	if err != nil {
		switch {
		case errors.Is(err, testdrives.ErrValidation):
			h.logger.Warn("PATCH /test-drives/{id}/complete - Validation failed: %v", err)
			handlers.RespondBadRequest(w, msgInvalidNote)

		case errors.Is(err, testdrives.ErrTestDriveNotFound):
			h.logger.Warn("PATCH /test-drives/{id}/complete - Test drive not found: test_drive_id=%d", testDriveID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, testdrives.ErrInvalidTransition):
			h.logger.Warn("PATCH /test-drives/{id}/complete - Invalid transition: test_drive_id=%d, user_id=%d", testDriveID, userID)
			handlers.RespondConflict(w, msgInvalidTransition)

		default:
			h.logger.Error("PATCH /test-drives/{id}/complete - Failed: test_drive_id=%d, error=%v", testDriveID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /test-drives/{id}/complete - Done: test_drive_id=%d, user_id=%d, status=%s",
		testDriveID, userID, testDrive.Status)
	handlers.RespondJSON(w, http.StatusOK, testDrive)
}
