package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stickyboard/core/internal/domain/access"
	"github.com/stickyboard/core/internal/domain/entities"
	"github.com/stickyboard/core/internal/infrastructure/logger"
	"github.com/stickyboard/core/internal/ports"
)

// fakeStore is an in-memory object store: note records, note meta and
// user meta.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	clock    time.Time
	records  map[int64]entities.NoteRecord
	meta     map[int64]map[string]string
	userMeta map[string]map[string]string
	failMeta error
	// afterList runs once after the next List call returns its snapshot.
	afterList func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:    time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		records:  make(map[int64]entities.NoteRecord),
		meta:     make(map[int64]map[string]string),
		userMeta: make(map[string]map[string]string),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) Create(_ context.Context, note *entities.NoteRecord, meta map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if note.OwnerID == "" {
		return entities.ErrInvalidInput
	}
	f.nextID++
	note.ID = f.nextID
	note.CreatedAt = f.tick()
	note.UpdatedAt = note.CreatedAt
	f.records[note.ID] = *note
	f.meta[note.ID] = make(map[string]string)
	for k, v := range meta {
		f.meta[note.ID][k] = v
	}
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*entities.NoteRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return nil, entities.ErrNoteNotFound
	}
	return &rec, nil
}

func (f *fakeStore) Update(_ context.Context, note *entities.NoteRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[note.ID]
	if !ok {
		return entities.ErrNoteNotFound
	}
	rec.Title = note.Title
	rec.UpdatedAt = f.tick()
	note.UpdatedAt = rec.UpdatedAt
	f.records[note.ID] = rec
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return entities.ErrNoteNotFound
	}
	delete(f.records, id)
	delete(f.meta, id)
	return nil
}

func (f *fakeStore) List(_ context.Context, filter ports.NoteFilter) ([]*entities.NoteRecord, error) {
	out := f.list(filter)
	if hook := f.afterList; hook != nil {
		f.afterList = nil
		hook()
	}
	return out, nil
}

func (f *fakeStore) list(filter ports.NoteFilter) []*entities.NoteRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[int64]bool{}
	for _, id := range filter.IDs {
		want[id] = true
	}
	var out []*entities.NoteRecord
	for id, rec := range f.records {
		if filter.IDs != nil && !want[id] {
			continue
		}
		if filter.OwnerID != nil && rec.OwnerID != *filter.OwnerID {
			continue
		}
		rec := rec
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) DeleteAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.records))
	f.records = make(map[int64]entities.NoteRecord)
	f.meta = make(map[int64]map[string]string)
	return n, nil
}

// metaView exposes the note meta half of fakeStore as ports.NoteMetaStore.
type metaView struct{ *fakeStore }

func (m metaView) Get(_ context.Context, noteID int64, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.meta[noteID][key]
	return v, ok, nil
}

func (m metaView) GetAll(_ context.Context, noteID int64) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]string{}
	for k, v := range m.meta[noteID] {
		out[k] = v
	}
	return out, nil
}

func (m metaView) GetForNotes(ctx context.Context, noteIDs []int64) (map[int64]map[string]string, error) {
	out := make(map[int64]map[string]string, len(noteIDs))
	for _, id := range noteIDs {
		all, _ := m.GetAll(ctx, id)
		out[id] = all
	}
	return out, nil
}

func (m metaView) ValuesByKey(_ context.Context, key string) (map[int64]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64]string{}
	for id, meta := range m.meta {
		if v, ok := meta[key]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (m metaView) Set(_ context.Context, noteID int64, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failMeta != nil {
		return m.failMeta
	}
	if _, ok := m.meta[noteID]; !ok {
		return entities.ErrNoteNotFound
	}
	m.meta[noteID][key] = value
	return nil
}

func (m metaView) SetMany(_ context.Context, key string, values map[int64]string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failMeta != nil {
		return 0, m.failMeta
	}
	var written int
	for id, v := range values {
		if _, ok := m.meta[id]; !ok {
			continue
		}
		m.meta[id][key] = v
		written++
	}
	return written, nil
}

func (m metaView) Delete(_ context.Context, noteID int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.meta[noteID], key)
	return nil
}

// userMetaView exposes the user meta half of fakeStore as ports.UserMetaStore.
type userMetaView struct{ *fakeStore }

func (u userMetaView) Get(_ context.Context, userID, key string) (string, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	v, ok := u.userMeta[userID][key]
	return v, ok, nil
}

func (u userMetaView) Set(_ context.Context, userID, key, value string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.userMeta[userID] == nil {
		u.userMeta[userID] = map[string]string{}
	}
	u.userMeta[userID][key] = value
	return nil
}

func (u userMetaView) Delete(_ context.Context, userID, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.userMeta[userID], key)
	return nil
}

func (u userMetaView) DeleteKey(_ context.Context, key string) (int64, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var n int64
	for _, meta := range u.userMeta {
		if _, ok := meta[key]; ok {
			delete(meta, key)
			n++
		}
	}
	return n, nil
}

// fakeCache is an in-memory PositionCache.
type fakeCache struct {
	max     int64
	ok      bool
	fail    error
	stores  int
	invalid int
}

func (c *fakeCache) Max(context.Context) (int64, bool, error) {
	if c.fail != nil {
		return 0, false, c.fail
	}
	return c.max, c.ok, nil
}

func (c *fakeCache) Store(_ context.Context, max int64, _ time.Duration) error {
	if c.fail != nil {
		return c.fail
	}
	c.stores++
	c.max, c.ok = max, true
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.invalid++
	c.max, c.ok = 0, false
	return nil
}

type fakeMetrics struct {
	mu  sync.Mutex
	ops map[string]int
}

func (m *fakeMetrics) ObserveOperation(op, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ops == nil {
		m.ops = map[string]int{}
	}
	m.ops[op+"/"+outcome]++
}

func (m *fakeMetrics) count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ops[key]
}

type fakeUserRepo struct {
	users map[string]*entities.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entities.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entities.User) error {
	if _, ok := r.users[user.Email]; ok {
		return entities.ErrEmailTaken
	}
	cp := *user
	r.users[user.Email] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) List(context.Context) ([]*entities.User, error) {
	return nil, errors.New("not implemented")
}

type boardFixture struct {
	store   *fakeStore
	cache   *fakeCache
	metrics *fakeMetrics
	repo    *NoteRepository
	order   *OrderManager
	board   *BoardService
}

func newBoardFixture(policy access.Policy) *boardFixture {
	store := newFakeStore()
	cache := &fakeCache{}
	metrics := &fakeMetrics{}
	log := logger.NewNop()
	repo := NewNoteRepository(store, metaView{store}, userMetaView{store}, DefaultColor)
	order := NewOrderManager(repo, cache, time.Minute, log)
	board := NewBoardService(repo, order, access.CapabilityAuthorizer{}, metrics, BoardOptions{Policy: policy}, log)
	return &boardFixture{store: store, cache: cache, metrics: metrics, repo: repo, order: order, board: board}
}
