package groups

import (
	"sort"
	"sync"

	"github.com/m04kA/SMC-TestDriveService/internal/domain"
)

// Registry членство соединений в группах (дилер, продукт).
// Ничего не сохраняется: состояние живёт, пока живо соединение.
type Registry struct {
	mu      sync.RWMutex
	members map[domain.GroupKey]map[string]struct{}
	byConn  map[string]map[domain.GroupKey]struct{}
}

// NewRegistry создает пустой реестр групп
func NewRegistry() *Registry {
	return &Registry{
		members: make(map[domain.GroupKey]map[string]struct{}),
		byConn:  make(map[string]map[domain.GroupKey]struct{}),
	}
}

// Join добавляет соединение в группу. Возвращает false, если оно уже там.
func (r *Registry) Join(group domain.GroupKey, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.members[group]
	if !ok {
		set = make(map[string]struct{})
		r.members[group] = set
	}
	if _, exists := set[connID]; exists {
		return false
	}
	set[connID] = struct{}{}

	groups, ok := r.byConn[connID]
	if !ok {
		groups = make(map[domain.GroupKey]struct{})
		r.byConn[connID] = groups
	}
	groups[group] = struct{}{}
	return true
}

// Leave убирает соединение из группы. Возвращает false, если его там не было.
func (r *Registry) Leave(group domain.GroupKey, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.leaveLocked(group, connID)
}

// LeaveAll убирает соединение из всех групп и возвращает их
func (r *Registry) LeaveAll(connID string) []domain.GroupKey {
	r.mu.Lock()
	defer r.mu.Unlock()

	left := make([]domain.GroupKey, 0, len(r.byConn[connID]))
	for group := range r.byConn[connID] {
		left = append(left, group)
	}
	for _, group := range left {
		r.leaveLocked(group, connID)
	}

	sortGroups(left)
	return left
}

// Members текущие участники группы
func (r *Registry) Members(group domain.GroupKey) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]string, 0, len(r.members[group]))
	for connID := range r.members[group] {
		members = append(members, connID)
	}
	sort.Strings(members)
	return members
}

// Groups группы, в которых состоит соединение
func (r *Registry) Groups(connID string) []domain.GroupKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]domain.GroupKey, 0, len(r.byConn[connID]))
	for group := range r.byConn[connID] {
		groups = append(groups, group)
	}
	sortGroups(groups)
	return groups
}

func (r *Registry) leaveLocked(group domain.GroupKey, connID string) bool {
	set, ok := r.members[group]
	if !ok {
		return false
	}
	if _, exists := set[connID]; !exists {
		return false
	}

	delete(set, connID)
	if len(set) == 0 {
		delete(r.members, group)
	}

	if groups, ok := r.byConn[connID]; ok {
		delete(groups, group)
		if len(groups) == 0 {
			delete(r.byConn, connID)
		}
	}
	return true
}

func sortGroups(groups []domain.GroupKey) {
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].DealerID != groups[j].DealerID {
			return groups[i].DealerID < groups[j].DealerID
		}
		return groups[i].ProductID < groups[j].ProductID
	})
}
