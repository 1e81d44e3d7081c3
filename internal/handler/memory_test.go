package handler_test

// In-memory implementations of the handler store interfaces, so the full
// HTTP surface can be exercised without MySQL. Semantics mirror the real
// repositories: same sentinel errors, newest-first listings, cascade
// delete of tasks and tokens with their user.

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/task-manager/internal/model"
	"github.com/iliyamo/task-manager/internal/repository"
	"github.com/iliyamo/task-manager/internal/utils"
)

type memDB struct {
	mu       sync.Mutex
	users    map[uint64]model.User
	tasks    map[uint64]model.Task
	tokens   map[string]uint64 // token hash -> user id
	nextUser uint64
	nextTask uint64
	clock    time.Time
}

func newMemDB() *memDB {
	return &memDB{
		users:  make(map[uint64]model.User),
		tasks:  make(map[uint64]model.Task),
		tokens: make(map[string]uint64),
		clock:  time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so newest-first ordering is
// deterministic.
func (db *memDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

type memUsers struct{ db *memDB }

func (m *memUsers) Create(_ context.Context, name, email, password, role string, cost int) (model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.db.users {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	m.db.nextUser++
	now := m.db.tick()
	u := model.User{
		ID: m.db.nextUser, Name: name, Email: email,
		PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now,
	}
	m.db.users[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u, ok := m.db.users[id]
	if !ok {
		return model.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *memUsers) List(_ context.Context, page, perPage int) ([]model.User, int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	all := make([]model.User, 0, len(m.db.users))
	for _, u := range m.db.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return pageOf(all, page, perPage), len(all), nil
}

func (m *memUsers) DeleteCascade(_ context.Context, id uint64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	for tid, t := range m.db.tasks {
		if t.UserID == id {
			delete(m.db.tasks, tid)
		}
	}
	for hash, uid := range m.db.tokens {
		if uid == id {
			delete(m.db.tokens, hash)
		}
	}
	delete(m.db.users, id)
	return nil
}

type memTasks struct{ db *memDB }

func (m *memTasks) Create(_ context.Context, t *model.Task) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.nextTask++
	now := m.db.tick()
	t.ID = m.db.nextTask
	t.CreatedAt = now
	t.UpdatedAt = now
	stored := *t
	stored.User = nil
	m.db.tasks[t.ID] = stored
	m.attachUser(t)
	return nil
}

func (m *memTasks) GetByID(_ context.Context, id uint64) (model.Task, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	t, ok := m.db.tasks[id]
	if !ok {
		return model.Task{}, repository.ErrTaskNotFound
	}
	m.attachUser(&t)
	return t, nil
}

func (m *memTasks) List(_ context.Context, page, perPage int) ([]model.Task, int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	all := make([]model.Task, 0, len(m.db.tasks))
	for _, t := range m.db.tasks {
		m.attachUser(&t)
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return pageOf(all, page, perPage), len(all), nil
}

func (m *memTasks) Update(_ context.Context, t *model.Task) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.tasks[t.ID]; !ok {
		return repository.ErrTaskNotFound
	}
	t.UpdatedAt = m.db.tick()
	stored := *t
	stored.User = nil
	m.db.tasks[t.ID] = stored
	m.attachUser(t)
	return nil
}

func (m *memTasks) Delete(_ context.Context, id uint64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(m.db.tasks, id)
	return nil
}

// attachUser mirrors the SQL join on the owning user. Caller holds the lock.
func (m *memTasks) attachUser(t *model.Task) {
	if u, ok := m.db.users[t.UserID]; ok {
		t.User = &u
	}
}

type memTokens struct{ db *memDB }

func (m *memTokens) Store(_ context.Context, userID uint64, tokenHash string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	m.db.tokens[tokenHash] = userID
	return nil
}

func (m *memTokens) Validate(_ context.Context, tokenHash string) (uint64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	id, ok := m.db.tokens[tokenHash]
	if !ok {
		return 0, repository.ErrTokenNotFound
	}
	return id, nil
}

func (m *memTokens) Revoke(_ context.Context, tokenHash string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	delete(m.db.tokens, tokenHash)
	return nil
}

func pageOf[T any](all []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(all) {
		return []T{}
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}
