package book_slot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/internal/service/testdrives"
	"github.com/m04kA/SMC-TestDriveService/internal/service/testdrives/models"
	"github.com/m04kA/SMC-TestDriveService/pkg/metrics"
)

const msgInternal = "internal error, please try again later"

// UseCase use case бронирования слота тест-драйва
type UseCase struct {
	testDrives TestDriveService
	slots      SlotService
	metrics    *metrics.Metrics
	logger     Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(testDrives TestDriveService, slots SlotService, m *metrics.Metrics, logger Logger) *UseCase {
	return &UseCase{
		testDrives: testDrives,
		slots:      slots,
		metrics:    m,
		logger:     logger,
	}
}

// Execute бронирует слот.
// Успех: удержание слота снимается независимо от владельца, группе уходит SlotBooked.
// Неудача: удержание запрашивающего снимается (SlotReleased), ошибка возвращается
// вместе с Response{Success: false}. Повторных попыток нет.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	key := domain.NewSlotKey(req.DealerID, req.ProductID, req.ScheduledDate)

	uc.logger.Info("BookSlot: requester=%q dealer=%d product=%d at=%s",
		req.RequesterID, req.DealerID, req.ProductID, key.At.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookSlot: validation failed: %v", err)
		return uc.fail(ctx, key, req.RequesterID, err)
	}

	// 2. Проверка и сохранение тест-драйва
	created, err := uc.testDrives.CreatePublicBooking(ctx, &models.CreatePublicBookingRequest{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		Notes:         req.Notes,
		ProductID:     req.ProductID,
		DealerID:      req.DealerID,
		ScheduledDate: key.At,
	})
	if err != nil {
		return uc.fail(ctx, key, req.RequesterID, mapError(err))
	}

	// 3. Бронирование важнее удержания
	uc.slots.MarkBooked(ctx, key)
	uc.metrics.ObserveBooking(metrics.BookingSuccess)

	uc.logger.Info("BookSlot: booked test drive id=%d", created.ID)
	return &Response{
		Success:       true,
		TestDriveID:   created.ID,
		ScheduledDate: created.ScheduledDate.UTC(),
	}, nil
}

// fail снимает удержание запрашивающего, чтобы слот не остался заблокированным
func (uc *UseCase) fail(ctx context.Context, key domain.SlotKey, requesterID string, err error) (*Response, error) {
	if uc.slots.ReleaseAfterFailedBooking(ctx, key, requesterID) {
		uc.logger.Info("BookSlot: released hold of %q after failure", requesterID)
	}

	if errors.Is(err, ErrInternal) {
		uc.metrics.ObserveBooking(metrics.BookingError)
	} else {
		uc.metrics.ObserveBooking(metrics.BookingRejected)
	}

	return &Response{Success: false, Error: userMessage(err)}, err
}

func mapError(err error) error {
	switch {
	case errors.Is(err, testdrives.ErrValidation):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, testdrives.ErrSlotNotAvailable):
		return ErrSlotNotAvailable
	case errors.Is(err, testdrives.ErrProductNotAvailable):
		return ErrProductNotAvailable
	default:
		return fmt.Errorf("%w: CreatePublicBooking: %v", ErrInternal, err)
	}
}

// userMessage текст ошибки для клиента, без префикса пакета
func userMessage(err error) string {
	if errors.Is(err, ErrInternal) {
		return msgInternal
	}
	return strings.TrimPrefix(err.Error(), "book_slot: ")
}
