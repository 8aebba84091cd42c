package get_test_drive

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

// Handle GET /api/v1/test-drives/{testDriveId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	testDriveID, err := strconv.ParseInt(mux.Vars(r)["testDriveId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /test-drives/{id} - Invalid test drive ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTestDriveID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /test-drives/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	testDrive, err := h.service.GetByID(r.Context(), testDriveID)
	if err != nil {
		if errors.Is(err, testdrives.ErrTestDriveNotFound) {
			h.logger.Warn("GET /test-drives/{id} - Test drive not found: test_drive_id=%d", testDriveID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}
		h.logger.Error("GET /test-drives/{id} - Failed to get test drive: test_drive_id=%d, error=%v", testDriveID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /test-drives/{id} - Test drive retrieved: test_drive_id=%d, user_id=%d", testDriveID, userID)
	handlers.RespondJSON(w, http.StatusOK, testDrive)
}
