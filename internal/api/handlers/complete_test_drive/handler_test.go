package complete_test_drive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TestDriveService/internal/api/middleware"
	"github.com/m04kA/SMC-TestDriveService/internal/service/testdrives"
	"github.com/m04kA/SMC-TestDriveService/internal/service/testdrives/models"
)

type fakeService struct {
	got  *models.CompleteRequest
	resp *models.TestDriveResponse
	err  error
}

func (f *fakeService) Complete(_ context.Context, _ int64, req *models.CompleteRequest) (*models.TestDriveResponse, error) {
	f.got = req
	return f.resp, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func serve(svc *fakeService, payload string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Handle("/test-drives/{testDriveId}/complete", middleware.Auth(http.HandlerFunc(NewHandler(svc, nopLogger{}).Handle)))
	req := httptest.NewRequest(http.MethodPatch, "/test-drives/5/complete", strings.NewReader(payload))
	req.Header.Set(middleware.UserIDHeader, "10")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Handle(t *testing.T) {
	t.Run("successful drive with note", func(t *testing.T) {
		svc := &fakeService{resp: &models.TestDriveResponse{ID: 5, Status: "successfully", CanCreateCustomer: true}}

		rec := serve(svc, `{"isSuccess":true,"note":"понравилась модель"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"canCreateCustomer":true`)
		require.NotNil(t, svc.got)
		assert.True(t, svc.got.IsSuccess)
		require.NotNil(t, svc.got.Note)
		assert.Equal(t, "понравилась модель", *svc.got.Note)
	})

	t.Run("failed drive", func(t *testing.T) {
		svc := &fakeService{resp: &models.TestDriveResponse{ID: 5, Status: "failed"}}

		rec := serve(svc, `{"isSuccess":false}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, svc.got.IsSuccess)
		assert.Nil(t, svc.got.Note)
	})

	t.Run("isSuccess is required", func(t *testing.T) {
		svc := &fakeService{}
		rec := serve(svc, `{"note":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, svc.got)
	})

	t.Run("empty body", func(t *testing.T) {
		rec := serve(&fakeService{}, ``)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := serve(&fakeService{err: testdrives.ErrValidation}, `{"isSuccess":true}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not confirmed yet", func(t *testing.T) {
		rec := serve(&fakeService{err: testdrives.ErrInvalidTransition}, `{"isSuccess":true}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		rec := serve(&fakeService{err: testdrives.ErrTestDriveNotFound}, `{"isSuccess":true}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
