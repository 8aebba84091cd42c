package holds

import (
	"encoding/binary"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
)

// Outcome результат попытки удержать слот
type Outcome int

const (
	// Conflict слот удерживается другим владельцем, удержание не выдано
	Conflict Outcome = iota
	// Granted выдано новое удержание (слот был свободен или прежнее истекло)
	Granted
	// Refreshed тот же владелец продлил своё удержание
	Refreshed
)

// OK удержание принадлежит запрашивающему
func (o Outcome) OK() bool {
	return o == Granted || o == Refreshed
}

func (o Outcome) String() string {
	switch o {
	case Granted:
		return "granted"
	case Refreshed:
		return "refreshed"
	default:
		return "conflict"
	}
}

// Store потокобезопасное хранилище удержаний слотов.
//
// Ключи распределены по шардам (мьютекс + map на шард), поэтому операции
// над независимыми слотами не блокируют друг друга. Под блокировкой шарда
// нет ввода-вывода.
//
// Истекшие удержания удаляются лениво: SweepExpired вызывается перед чтением
// диапазона, фонового таймера нет. До следующей очистки истекшее удержание
// может выглядеть занятым для читателя; TryHold при этом всегда учитывает срок.
type Store struct {
	shards       []*shard
	timeProvider TimeProvider
}

type shard struct {
	mu    sync.Mutex
	holds map[domain.SlotKey]domain.Hold
}

// Option настройка Store
type Option func(*Store)

// WithShards задает количество шардов (по умолчанию domain.DefaultHoldShards)
func WithShards(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.shards = newShards(n)
		}
	}
}

// WithTimeProvider подменяет источник времени (в тестах)
func WithTimeProvider(tp TimeProvider) Option {
	return func(s *Store) {
		if tp != nil {
			s.timeProvider = tp
		}
	}
}

// NewStore создает пустое хранилище удержаний
func NewStore(opts ...Option) *Store {
	s := &Store{
		shards:       newShards(domain.DefaultHoldShards),
		timeProvider: &RealTimeProvider{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newShards(n int) []*shard {
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{holds: make(map[domain.SlotKey]domain.Hold)}
	}
	return shards
}

// TryHold выдает удержание, если слот свободен, прежнее удержание истекло
// или принадлежит тому же holderID (продление). При конфликте возвращает
// текущее чужое удержание.
func (s *Store) TryHold(key domain.SlotKey, holderID string, ttl time.Duration) (domain.Hold, Outcome) {
	key = normalize(key)
	now := s.timeProvider.Now()
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	outcome := Granted
	if existing, ok := sh.holds[key]; ok && !existing.IsExpired(now) {
		if !existing.IsHeldBy(holderID) {
			return existing, Conflict
		}
		outcome = Refreshed
	}

	hold := domain.Hold{
		Key:       key,
		HolderID:  holderID,
		ExpiresAt: now.Add(ttl),
	}
	sh.holds[key] = hold
	return hold, outcome
}

// Get возвращает живое удержание слота
func (s *Store) Get(key domain.SlotKey) (domain.Hold, bool) {
	key = normalize(key)
	now := s.timeProvider.Now()
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	hold, ok := sh.holds[key]
	if !ok || hold.IsExpired(now) {
		return domain.Hold{}, false
	}
	return hold, true
}

// IsHeldBy удерживает ли holderID живое удержание слота
func (s *Store) IsHeldBy(key domain.SlotKey, holderID string) bool {
	hold, ok := s.Get(key)
	return ok && hold.IsHeldBy(holderID)
}

// Release снимает удержание, только если оно принадлежит holderID.
// Чужое или отсутствующее удержание не трогается.
func (s *Store) Release(key domain.SlotKey, holderID string) bool {
	key = normalize(key)
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	hold, ok := sh.holds[key]
	if !ok || !hold.IsHeldBy(holderID) {
		return false
	}
	delete(sh.holds, key)
	return true
}

// Remove снимает удержание независимо от владельца
func (s *Store) Remove(key domain.SlotKey) bool {
	key = normalize(key)
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.holds[key]; !ok {
		return false
	}
	delete(sh.holds, key)
	return true
}

// ReleaseAllForHolder снимает все удержания holderID и возвращает их ключи.
// Линейный проход по всем удержаниям системы: O(n).
func (s *Store) ReleaseAllForHolder(holderID string) []domain.SlotKey {
	released := make([]domain.SlotKey, 0)

	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, hold := range sh.holds {
			if hold.IsHeldBy(holderID) {
				delete(sh.holds, key)
				released = append(released, key)
			}
		}
		sh.mu.Unlock()
	}

	sortKeys(released)
	return released
}

// SweepExpired удаляет истекшие удержания и возвращает их количество
func (s *Store) SweepExpired() int {
	now := s.timeProvider.Now()
	removed := 0

	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, hold := range sh.holds {
			if hold.IsExpired(now) {
				delete(sh.holds, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}

	return removed
}

// ListHeldInRange после очистки возвращает моменты живых удержаний группы в [from, to]
func (s *Store) ListHeldInRange(dealerID, productID int64, from, to time.Time) []time.Time {
	s.SweepExpired()

	from = from.UTC()
	to = to.UTC()
	group := domain.GroupKey{DealerID: dealerID, ProductID: productID}
	held := make([]time.Time, 0)

	for _, sh := range s.shards {
		sh.mu.Lock()
		for key := range sh.holds {
			if key.Group() != group {
				continue
			}
			if key.At.Before(from) || key.At.After(to) {
				continue
			}
			held = append(held, key.At)
		}
		sh.mu.Unlock()
	}

	sort.Slice(held, func(i, j int) bool { return held[i].Before(held[j]) })
	return held
}

// Len количество хранимых удержаний, включая ещё не очищенные истекшие
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.holds)
		sh.mu.Unlock()
	}
	return n
}

func (s *Store) shardFor(key domain.SlotKey) *shard {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(key.DealerID))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(key.ProductID))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(key.At.UnixNano()))

	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return s.shards[h.Sum64()%uint64(len(s.shards))]
}

func normalize(key domain.SlotKey) domain.SlotKey {
	return domain.NewSlotKey(key.DealerID, key.ProductID, key.At)
}

func sortKeys(keys []domain.SlotKey) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].DealerID != keys[j].DealerID {
			return keys[i].DealerID < keys[j].DealerID
		}
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		return keys[i].At.Before(keys[j].At)
	})
}
