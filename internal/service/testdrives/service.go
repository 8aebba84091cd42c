package testdrives

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/internal/infra/events"
	testdriveRepo "github.com/m04kA/SMC-TestDriveService/internal/infra/storage/testdrive"
	"github.com/m04kA/SMC-TestDriveService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-TestDriveService/internal/service/testdrives/models"
)

// BookingRules ограничения на время публичного бронирования
type BookingRules struct {
	MinNotice     time.Duration
	AdvanceWindow time.Duration
}

// DefaultBookingRules правила по умолчанию: не ранее чем через час и не далее 30 дней
func DefaultBookingRules() BookingRules {
	return BookingRules{
		MinNotice:     domain.DefaultMinBookingNoticeMinutes * time.Minute,
		AdvanceWindow: domain.DefaultAdvanceBookingDays * 24 * time.Hour,
	}
}

// Service сервис тест-драйвов: публичное бронирование и действия сотрудников
type Service struct {
	repo          TestDriveRepository
	catalogClient CatalogServiceClient
	txManager     TransactionManager
	publisher     EventPublisher
	validator     *Validator
	rules         BookingRules
	timeProvider  TimeProvider
	logger        Logger
}

// NewService создает новый экземпляр сервиса тест-драйвов.
// catalogClient может быть nil: тогда продукт не проверяется.
func NewService(
	repo TestDriveRepository,
	catalogClient CatalogServiceClient,
	txManager TransactionManager,
	publisher EventPublisher,
	rules BookingRules,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &Service{
		repo:          repo,
		catalogClient: catalogClient,
		txManager:     txManager,
		publisher:     publisher,
		validator:     NewValidator(),
		rules:         rules,
		timeProvider:  timeProvider,
		logger:        logger,
	}
}

// CreatePublicBooking создает тест-драйв в статусе pending.
// Проверка занятости слота и вставка выполняются в одной SERIALIZABLE транзакции.
func (s *Service) CreatePublicBooking(ctx context.Context, req *models.CreatePublicBookingRequest) (*models.TestDriveResponse, error) {
	s.logger.Info("CreatePublicBooking: dealer=%d product=%d at=%s",
		req.DealerID, req.ProductID, req.ScheduledDate.UTC().Format(time.RFC3339))

	// 1. Валидация полей
	if err := s.validator.Validate(req); err != nil {
		s.logger.Warn("CreatePublicBooking: %v", err)
		return nil, err
	}

	// 2. Окно бронирования
	if err := s.checkBookingWindow(req.ScheduledDate); err != nil {
		s.logger.Warn("CreatePublicBooking: %v", err)
		return nil, err
	}

	// 3. Продукт предлагается дилером
	if err := s.checkProduct(ctx, req.DealerID, req.ProductID); err != nil {
		return nil, err
	}

	// 4. Проверка коллизии и сохранение
	td := req.ToDomainTestDrive()
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		taken, err := s.repo.HasActiveAt(ctx, td.Slot())
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotNotAvailable
		}

		td, err = s.repo.Create(ctx, td)
		return err
	})
	if err != nil {
		// Конфликт сериализации при commit означает, что слот занял параллельный запрос
		if errors.Is(err, ErrSlotNotAvailable) || errors.Is(err, testdriveRepo.ErrSlotTaken) ||
			testdriveRepo.IsSlotConflict(err) {
			s.logger.Warn("CreatePublicBooking: slot dealer=%d product=%d at=%s already taken",
				req.DealerID, req.ProductID, req.ScheduledDate.UTC().Format(time.RFC3339))
			return nil, ErrSlotNotAvailable
		}
		s.logger.Error("CreatePublicBooking: failed to create test drive: %v", err)
		return nil, fmt.Errorf("%w: CreatePublicBooking - create test drive: %v", ErrInternal, err)
	}

	s.publish(ctx, td)

	s.logger.Info("CreatePublicBooking: created test drive id=%d", td.ID)
	return models.FromDomainTestDrive(td), nil
}

// GetScheduledInRange моменты начала активных тест-драйвов в [from, to]
func (s *Service) GetScheduledInRange(ctx context.Context, dealerID, productID int64, from, to time.Time) ([]time.Time, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to is before from", ErrInvalidTimeRange)
	}

	scheduled, err := s.repo.GetScheduledInRange(ctx, dealerID, productID, from.UTC(), to.UTC())
	if err != nil {
		s.logger.Error("GetScheduledInRange: repository error for dealer=%d product=%d: %v", dealerID, productID, err)
		return nil, fmt.Errorf("%w: GetScheduledInRange - repository error: %v", ErrInternal, err)
	}

	return scheduled, nil
}

// GetByID получает тест-драйв по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.TestDriveResponse, error) {
	td, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, testdriveRepo.ErrTestDriveNotFound) {
			s.logger.Warn("GetByID: test drive id=%d not found", id)
			return nil, ErrTestDriveNotFound
		}
		s.logger.Error("GetByID: repository error for test drive id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainTestDrive(td), nil
}

// Confirm pending -> confirmed
func (s *Service) Confirm(ctx context.Context, id int64) (*models.TestDriveResponse, error) {
	return s.transition(ctx, "Confirm", id, domain.TestDriveStatusConfirmed, nil)
}

// Complete confirmed -> successfully | failed, с необязательным комментарием сотрудника
func (s *Service) Complete(ctx context.Context, id int64, req *models.CompleteRequest) (*models.TestDriveResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		s.logger.Warn("Complete: test drive id=%d: %v", id, err)
		return nil, err
	}

	next := domain.TestDriveStatusFailed
	if req.IsSuccess {
		next = domain.TestDriveStatusSuccessfully
	}
	return s.transition(ctx, "Complete", id, next, models.OptionalText(req.Note))
}

// Cancel pending|confirmed -> canceled
func (s *Service) Cancel(ctx context.Context, id int64) (*models.TestDriveResponse, error) {
	return s.transition(ctx, "Cancel", id, domain.TestDriveStatusCanceled, nil)
}

func (s *Service) transition(ctx context.Context, op string, id int64, next domain.TestDriveStatus, note *string) (*models.TestDriveResponse, error) {
	s.logger.Info("%s: test drive id=%d -> %s", op, id, next)

	td, err := s.repo.Transition(ctx, testdriveRepo.TransitionParams{
		ID:        id,
		Next:      next,
		From:      domain.SourceStatuses(next),
		StaffNote: note,
		At:        s.timeProvider.Now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, testdriveRepo.ErrTestDriveNotFound):
			s.logger.Warn("%s: test drive id=%d not found", op, id)
			return nil, ErrTestDriveNotFound
		case errors.Is(err, testdriveRepo.ErrInvalidTransition):
			s.logger.Warn("%s: test drive id=%d cannot move to %s", op, id, next)
			return nil, ErrInvalidTransition
		default:
			s.logger.Error("%s: repository error for test drive id=%d: %v", op, id, err)
			return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
		}
	}

	s.publish(ctx, td)

	s.logger.Info("%s: test drive id=%d is now %s", op, id, td.Status)
	return models.FromDomainTestDrive(td), nil
}

func (s *Service) checkBookingWindow(scheduled time.Time) error {
	now := s.timeProvider.Now()

	if scheduled.Before(now.Add(s.rules.MinNotice)) {
		return fmt.Errorf("%w: scheduledDate must be at least %d minutes from now",
			ErrValidation, int(s.rules.MinNotice/time.Minute))
	}
	if s.rules.AdvanceWindow > 0 && scheduled.After(now.Add(s.rules.AdvanceWindow)) {
		return fmt.Errorf("%w: scheduledDate must be within %d days",
			ErrValidation, int(s.rules.AdvanceWindow/(24*time.Hour)))
	}
	return nil
}

func (s *Service) checkProduct(ctx context.Context, dealerID, productID int64) error {
	if s.catalogClient == nil {
		return nil
	}

	product, err := s.catalogClient.GetProductWithGracefulDegradation(ctx, dealerID, productID)
	if err != nil {
		if errors.Is(err, catalogservice.ErrServiceDegraded) {
			s.logger.Warn("checkProduct: catalog unavailable, skipping check for dealer=%d product=%d", dealerID, productID)
			return nil
		}
		if errors.Is(err, catalogservice.ErrProductNotFound) {
			return ErrProductNotAvailable
		}
		return fmt.Errorf("%w: checkProduct - catalog error: %v", ErrInternal, err)
	}

	if !product.TestDriveAvailable {
		s.logger.Warn("checkProduct: product id=%d at dealer id=%d is not offered for test drives", productID, dealerID)
		return ErrProductNotAvailable
	}
	return nil
}

// publish ошибки брокера не влияют на результат операции
func (s *Service) publish(ctx context.Context, td *domain.TestDrive) {
	if s.publisher == nil {
		return
	}
	key := events.RoutingKeyFor(td.Status)
	if err := s.publisher.PublishJSON(ctx, key, events.NewTestDriveEvent(td, s.timeProvider.Now())); err != nil {
		s.logger.Error("publish %s for test drive id=%d failed: %v", key, td.ID, err)
	}
}
