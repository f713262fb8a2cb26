package store

import (
	"context"
	"sort"
	"sync"

	"github.com/foomo/releaseregistry/pkg/release"
	"github.com/google/uuid"
)

type key struct {
	name    string
	version string
}

type memoryRecord struct {
	id      string
	release release.Release
}

// MemoryStore implements release.Store in process memory.
// Records are kept in insertion order which is what distinct queries return.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*memoryRecord
	index   map[key]*memoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index: map[key]*memoryRecord{},
	}
}

func (m *MemoryStore) Get(_ context.Context, name, version string) (*release.Release, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.index[key{name, version}]
	if !ok {
		return nil, release.ErrNotFound
	}
	return clone(&rec.release), nil
}

func (m *MemoryStore) Insert(_ context.Context, r *release.Release) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{r.Name, r.Version}
	if _, ok := m.index[k]; ok {
		return "", release.ErrConflict
	}
	rec := &memoryRecord{
		id:      uuid.New().String(),
		release: *clone(r),
	}
	m.records = append(m.records, rec)
	m.index[k] = rec
	return rec.id, nil
}

func (m *MemoryStore) List(_ context.Context, skip, limit int64) ([]*release.Release, error) {
	m.mu.RLock()
	sorted := make([]*release.Release, 0, len(m.records))
	for _, rec := range m.records {
		sorted = append(sorted, clone(&rec.release))
	}
	m.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Version > sorted[j].Version
	})

	if skip >= int64(len(sorted)) {
		return []*release.Release{}, nil
	}
	end := skip + limit
	if end > int64(len(sorted)) {
		end = int64(len(sorted))
	}
	return sorted[skip:end], nil
}

func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

func (m *MemoryStore) Names(_ context.Context) ([]string, error) {
	return m.distinct(func(r *release.Release) (string, bool) {
		return r.Name, true
	}), nil
}

func (m *MemoryStore) Versions(_ context.Context, name string) ([]string, error) {
	return m.distinct(func(r *release.Release) (string, bool) {
		return r.Version, r.Name == name
	}), nil
}

func (m *MemoryStore) Delete(_ context.Context, name, version string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{name, version}
	rec, ok := m.index[k]
	if !ok {
		return 0, nil
	}
	delete(m.index, k)
	for i, r := range m.records {
		if r == rec {
			m.records = append(m.records[:i], m.records[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

func (m *MemoryStore) Close(_ context.Context) error {
	return nil
}

func (m *MemoryStore) distinct(fn func(r *release.Release) (string, bool)) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]struct{}{}
	values := []string{}
	for _, rec := range m.records {
		v, ok := fn(&rec.release)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}

func clone(r *release.Release) *release.Release {
	c := *r
	c.Assets = make([]string, len(r.Assets))
	copy(c.Assets, r.Assets)
	return &c
}
