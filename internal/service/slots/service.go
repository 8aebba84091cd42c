package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
	"github.com/m04kA/SMC-TestDriveService/pkg/metrics"
)

// Service протокол удержания слотов: удержание, снятие, очистка при отключении
// и рассылка событий группе (дилер, продукт).
type Service struct {
	store    HoldStore
	groups   GroupRegistry
	notifier Notifier
	ttl      time.Duration
	metrics  *metrics.Metrics
	logger   Logger
}

// NewService создает сервис слотов. ttl <= 0 заменяется на domain.DefaultHoldTTL.
func NewService(store HoldStore, groups GroupRegistry, notifier Notifier, ttl time.Duration, m *metrics.Metrics, logger Logger) *Service {
	if ttl <= 0 {
		ttl = domain.DefaultHoldTTL
	}
	return &Service{
		store:    store,
		groups:   groups,
		notifier: notifier,
		ttl:      ttl,
		metrics:  m,
		logger:   logger,
	}
}

// JoinGroup подписывает соединение на события пары (дилер, продукт)
func (s *Service) JoinGroup(dealerID, productID int64, connID string) {
	if s.groups.Join(domain.GroupKey{DealerID: dealerID, ProductID: productID}, connID) {
		s.logger.Info("JoinGroup: conn=%s dealer=%d product=%d", connID, dealerID, productID)
	}
}

// LeaveGroup отписывает соединение; повторный вызов ничего не делает
func (s *Service) LeaveGroup(dealerID, productID int64, connID string) {
	if s.groups.Leave(domain.GroupKey{DealerID: dealerID, ProductID: productID}, connID) {
		s.logger.Info("LeaveGroup: conn=%s dealer=%d product=%d", connID, dealerID, productID)
	}
}

// HoldSlot пытается удержать слот за соединением.
// true, если удержание выдано или продлено; при успехе группе уходит SlotHeld.
func (s *Service) HoldSlot(ctx context.Context, key domain.SlotKey, connID string) bool {
	key = domain.NewSlotKey(key.DealerID, key.ProductID, key.At)

	_, outcome := s.store.TryHold(key, connID, s.ttl)
	s.metrics.ObserveHoldRequest(outcome.String())
	s.recordActive()

	if !outcome.OK() {
		s.logger.Info("HoldSlot: conn=%s conflict on %s", connID, describe(key))
		return false
	}

	s.notify(ctx, domain.SlotHeld, key)
	return true
}

// ReleaseSlot снимает удержание, только если оно принадлежит connID.
// Чужое или отсутствующее удержание молча игнорируется.
func (s *Service) ReleaseSlot(ctx context.Context, key domain.SlotKey, connID string) bool {
	return s.release(ctx, key, connID, metrics.ReleaseExplicit)
}

// ReleaseAfterFailedBooking снимает удержание запрашивающего после неудачного бронирования,
// чтобы слот не остался заблокированным до истечения TTL
func (s *Service) ReleaseAfterFailedBooking(ctx context.Context, key domain.SlotKey, connID string) bool {
	if connID == "" {
		return false
	}
	return s.release(ctx, key, connID, metrics.ReleaseBookingFailed)
}

// MarkBooked удаляет удержание слота независимо от владельца и рассылает SlotBooked.
// Бронирование важнее удержания.
func (s *Service) MarkBooked(ctx context.Context, key domain.SlotKey) {
	key = domain.NewSlotKey(key.DealerID, key.ProductID, key.At)

	if s.store.Remove(key) {
		s.metrics.ObserveHoldRelease(metrics.ReleaseBooked, 1)
		s.recordActive()
	}
	s.notify(ctx, domain.SlotBooked, key)
}

// Disconnect снимает все удержания соединения (SlotReleased по каждому)
// и удаляет его из всех групп
func (s *Service) Disconnect(ctx context.Context, connID string) {
	released := s.store.ReleaseAllForHolder(connID)
	s.metrics.ObserveHoldRelease(metrics.ReleaseDisconnect, len(released))
	s.recordActive()

	for _, key := range released {
		s.notify(ctx, domain.SlotReleased, key)
	}

	left := s.groups.LeaveAll(connID)
	s.logger.Info("Disconnect: conn=%s released %d holds, left %d groups", connID, len(released), len(left))
}

// HeldInRange живые удержания пары (дилер, продукт) в [from, to].
// Перед чтением истекшие удержания удаляются.
func (s *Service) HeldInRange(dealerID, productID int64, from, to time.Time) []time.Time {
	s.recordActive()
	return s.store.ListHeldInRange(dealerID, productID, from, to)
}

func (s *Service) release(ctx context.Context, key domain.SlotKey, connID, reason string) bool {
	key = domain.NewSlotKey(key.DealerID, key.ProductID, key.At)

	if !s.store.Release(key, connID) {
		return false
	}
	s.metrics.ObserveHoldRelease(reason, 1)
	s.recordActive()

	s.notify(ctx, domain.SlotReleased, key)
	return true
}

// recordActive удаляет истекшие удержания и обновляет gauge живых удержаний
func (s *Service) recordActive() {
	if n := s.store.SweepExpired(); n > 0 {
		s.metrics.ObserveHoldRelease(metrics.ReleaseExpired, n)
	}
	s.metrics.SetActiveHolds(s.store.Len())
}

func (s *Service) notify(ctx context.Context, eventType domain.SlotEventType, key domain.SlotKey) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, key.Group(), domain.NewSlotEvent(eventType, key))
}

func describe(key domain.SlotKey) string {
	return fmt.Sprintf("dealer=%d product=%d at=%s", key.DealerID, key.ProductID, key.At.Format(time.RFC3339))
}
