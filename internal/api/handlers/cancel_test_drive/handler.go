package cancel_test_drive

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
	msgNotFound           = "тест-драйв не найден"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidTransition  = "тест-драйв не может быть отменен в текущем статусе"
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

// Handle PATCH /api/v1/test-drives/{testDriveId}/cancel
// pending|confirmed -> canceled
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	testDriveID, err := strconv.ParseInt(mux.Vars(r)["testDriveId"], 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /test-drives/{id}/cancel - Invalid test drive ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTestDriveID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /test-drives/{id}/cancel - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	testDrive, err := h.service.Cancel(r.Context(), testDriveID)
	if err != nil {
		switch {
		case errors.Is(err, testdrives.ErrTestDriveNotFound):
			h.logger.Warn("PATCH /test-drives/{id}/cancel - Test drive not found: test_drive_id=%d", testDriveID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, testdrives.ErrInvalidTransition):
			h.logger.Warn("PATCH /test-drives/{id}/cancel - Invalid transition: test_drive_id=%d, user_id=%d", testDriveID, userID)
			handlers.RespondConflict(w, msgInvalidTransition)

		default:
			h.logger.Error("PATCH /test-drives/{id}/cancel - Failed: test_drive_id=%d, error=%v", testDriveID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /test-drives/{id}/cancel - Done: test_drive_id=%d, user_id=%d, status=%s",
		testDriveID, userID, testDrive.Status)
	handlers.RespondJSON(w, http.StatusOK, testDrive)
}
