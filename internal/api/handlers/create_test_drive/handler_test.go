package create_test_drive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookSlot "github.com/m04kA/SMC-TestDriveService/internal/usecase/book_slot"
)

type fakeUseCase struct {
	got  *bookSlot.Request
	resp *bookSlot.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *bookSlot.Request) (*bookSlot.Response, error) {
	f.got = req
	return f.resp, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func body(date string) string {
	return fmt.Sprintf(`{"customerName":"Anna","customerPhone":"+79990000001","customerEmail":"anna@example.com",
		"productId":7,"dealerId":1,"scheduledDate":%q}`, date)
}

func serve(uc *fakeUseCase, payload string) *httptest.ResponseRecorder {
	h := NewHandler(uc, nopLogger{})
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodPost, "/api/v1/test-drives", strings.NewReader(payload)))
	return rec
}

func TestHandler_Handle(t *testing.T) {
	at := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("created", func(t *testing.T) {
		uc := &fakeUseCase{resp: &bookSlot.Response{Success: true, TestDriveID: 5, ScheduledDate: at}}

		rec := serve(uc, body("2025-01-10T12:00:00+03:00"))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"success":true,"testDriveId":5,"scheduledDate":"2025-01-10T09:00:00Z"}`, rec.Body.String())
		require.NotNil(t, uc.got)
		assert.True(t, uc.got.ScheduledDate.Equal(at))
		assert.Empty(t, uc.got.RequesterID)
	})

	t.Run("zoneless date rejected", func(t *testing.T) {
		uc := &fakeUseCase{}

		rec := serve(uc, body("2025-01-10T09:00:00"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "часовой пояс")
		assert.Nil(t, uc.got)
	})

	t.Run("garbage date", func(t *testing.T) {
		rec := serve(&fakeUseCase{}, body("tomorrow"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := serve(&fakeUseCase{}, `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", fmt.Errorf("%w: customerEmail: must be a valid email", bookSlot.ErrInvalidInput), http.StatusBadRequest},
		{"slot taken", bookSlot.ErrSlotNotAvailable, http.StatusConflict},
		{"product", bookSlot.ErrProductNotAvailable, http.StatusUnprocessableEntity},
		{"internal", bookSlot.ErrInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{resp: &bookSlot.Response{Success: false, Error: tt.err.Error()}, err: tt.err}

			rec := serve(uc, body("2025-01-10T09:00:00Z"))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
