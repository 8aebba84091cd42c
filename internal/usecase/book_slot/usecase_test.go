package book_slot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/internal/infra/groups"
	"github.com/m04kA/SMC-TestDriveService/internal/infra/holds"
	"github.com/m04kA/SMC-TestDriveService/internal/service/slots"
	"github.com/m04kA/SMC-TestDriveService/internal/service/testdrives"
	"github.com/m04kA/SMC-TestDriveService/internal/service/testdrives/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// fakeTestDrives сервис тест-драйвов в памяти
type fakeTestDrives struct {
	mu     sync.Mutex
	nextID int64
	booked []*models.TestDriveResponse
	err    error
}

func (f *fakeTestDrives) CreatePublicBooking(_ context.Context, req *models.CreatePublicBookingRequest) (*models.TestDriveResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, b := range f.booked {
		if b.DealerID == req.DealerID && b.ProductID == req.ProductID && b.ScheduledDate.Equal(req.ScheduledDate) {
			return nil, testdrives.ErrSlotNotAvailable
		}
	}
	f.nextID++
	resp := &models.TestDriveResponse{
		ID:            f.nextID,
		DealerID:      req.DealerID,
		ProductID:     req.ProductID,
		ScheduledDate: req.ScheduledDate.UTC(),
		Status:        string(domain.TestDriveStatusPending),
	}
	f.booked = append(f.booked, resp)
	return resp, nil
}

func (f *fakeTestDrives) GetScheduledInRange(_ context.Context, dealerID, productID int64, from, to time.Time) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]time.Time, 0)
	for _, b := range f.booked {
		if b.DealerID == dealerID && b.ProductID == productID &&
			!b.ScheduledDate.Before(from) && !b.ScheduledDate.After(to) {
			out = append(out, b.ScheduledDate)
		}
	}
	return out, f.err
}

type event struct {
	group domain.GroupKey
	event domain.SlotEvent
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []event
}

func (f *fakeNotifier) Notify(_ context.Context, group domain.GroupKey, e domain.SlotEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event{group: group, event: e})
}

func (f *fakeNotifier) types() []domain.SlotEventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.SlotEventType, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.event.Type)
	}
	return out
}

type fixture struct {
	uc         *UseCase
	testDrives *fakeTestDrives
	slots      *slots.Service
	store      *holds.Store
	notifier   *fakeNotifier
	clock      *clock
}

func newFixture() *fixture {
	f := &fixture{
		testDrives: &fakeTestDrives{},
		notifier:   &fakeNotifier{},
		clock:      &clock{now: time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC)},
	}
	f.store = holds.NewStore(holds.WithTimeProvider(f.clock))
	f.slots = slots.NewService(f.store, groups.NewRegistry(), f.notifier, domain.DefaultHoldTTL, nil, nopLogger{})
	f.uc = NewUseCase(f.testDrives, f.slots, nil, nopLogger{})
	return f
}

var slotAt = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func request(requester string) *Request {
	return &Request{
		RequesterID:   requester,
		CustomerName:  "Anna",
		CustomerPhone: "+79990000001",
		CustomerEmail: "anna@example.com",
		DealerID:      1,
		ProductID:     7,
		ScheduledDate: slotAt,
	}
}

func key() domain.SlotKey { return domain.NewSlotKey(1, 7, slotAt) }

func TestUseCase_Execute_Success(t *testing.T) {
	ctx := context.Background()

	t.Run("booking supersedes hold of the requester", func(t *testing.T) {
		f := newFixture()
		require.True(t, f.slots.HoldSlot(ctx, key(), "a"))

		resp, err := f.uc.Execute(ctx, request("a"))

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, int64(1), resp.TestDriveID)
		assert.Equal(t, slotAt, resp.ScheduledDate)
		_, held := f.store.Get(key())
		assert.False(t, held)
		assert.Equal(t, []domain.SlotEventType{domain.SlotHeld, domain.SlotBooked}, f.notifier.types())
	})

	t.Run("booking supersedes hold of another connection", func(t *testing.T) {
		f := newFixture()
		require.True(t, f.slots.HoldSlot(ctx, key(), "b"))

		resp, err := f.uc.Execute(ctx, request("a"))

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, 0, f.store.Len())
	})

	t.Run("request without hold", func(t *testing.T) {
		f := newFixture()

		resp, err := f.uc.Execute(ctx, request(""))

		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.Equal(t, []domain.SlotEventType{domain.SlotBooked}, f.notifier.types())
	})

	t.Run("non-UTC date addresses the same slot", func(t *testing.T) {
		f := newFixture()
		require.True(t, f.slots.HoldSlot(ctx, key(), "a"))
		req := request("a")
		req.ScheduledDate = slotAt.In(time.FixedZone("MSK", 3*60*60))

		resp, err := f.uc.Execute(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, slotAt, resp.ScheduledDate)
		assert.Equal(t, 0, f.store.Len())
	})
}

func TestUseCase_Execute_Failure(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		err     error
		want    error
		message string
	}{
		{"validation", fmt.Errorf("%w: customerEmail: must be a valid email", testdrives.ErrValidation), ErrInvalidInput, "customerEmail: must be a valid email"},
		{"slot taken", testdrives.ErrSlotNotAvailable, ErrSlotNotAvailable, "slot is not available"},
		{"product", testdrives.ErrProductNotAvailable, ErrProductNotAvailable, "product is not available"},
		{"transient", fmt.Errorf("%w: db timeout", testdrives.ErrInternal), ErrInternal, msgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.testDrives.err = tt.err
			require.True(t, f.slots.HoldSlot(ctx, key(), "a"))

			resp, err := f.uc.Execute(ctx, request("a"))

			assert.ErrorIs(t, err, tt.want)
			require.NotNil(t, resp)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Error, tt.message)

			// удержание снято, группа уведомлена
			_, held := f.store.Get(key())
			assert.False(t, held)
			assert.Equal(t, []domain.SlotEventType{domain.SlotHeld, domain.SlotReleased}, f.notifier.types())
		})
	}

	t.Run("foreign hold is kept on failure", func(t *testing.T) {
		f := newFixture()
		f.testDrives.err = testdrives.ErrSlotNotAvailable
		require.True(t, f.slots.HoldSlot(ctx, key(), "b"))

		_, err := f.uc.Execute(ctx, request("a"))

		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		hold, held := f.store.Get(key())
		require.True(t, held)
		assert.Equal(t, "b", hold.HolderID)
		assert.Equal(t, []domain.SlotEventType{domain.SlotHeld}, f.notifier.types())
	})

	t.Run("invalid request releases hold", func(t *testing.T) {
		f := newFixture()
		req := request("a")
		req.DealerID = 0
		bad := domain.NewSlotKey(0, 7, slotAt)
		require.True(t, f.slots.HoldSlot(ctx, bad, "a"))

		resp, err := f.uc.Execute(ctx, req)

		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.False(t, resp.Success)
		assert.Equal(t, 0, f.store.Len())
	})

	t.Run("collaborator error is not retried", func(t *testing.T) {
		f := newFixture()
		f.testDrives.err = errors.New("connection reset")

		_, err := f.uc.Execute(ctx, request("a"))

		assert.ErrorIs(t, err, ErrInternal)
		assert.Empty(t, f.testDrives.booked)
	})
}
