package repository

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
)

// MemoryRepository implements Port with an in-memory map. It backs tests
// and local dry experiments; durable flags do not survive the process.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[Ref]*memoryItem
}

type memoryItem struct {
	props    map[string]string
	flags    map[string]bool
	content  []byte
	mimetype string
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[Ref]*memoryItem)}
}

// Search filters items against the query predicates and returns their
// references in ascending order, honoring skip and limit.
func (m *MemoryRepository) Search(ctx context.Context, q Query, skip, limit int) ([]Ref, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Ref
	for ref, it := range m.items {
		if matchesQuery(it, q) {
			matched = append(matched, ref)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i] < matched[j] })

	if skip >= len(matched) {
		return nil, nil
	}
	matched = matched[skip:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matchesQuery(it *memoryItem, q Query) bool {
	if q.NameExact != "" && it.props[PropName] != q.NameExact {
		return false
	}
	if q.Keyword != "" {
		kw := strings.ToLower(q.Keyword)
		if !strings.HasPrefix(strings.ToLower(it.props[PropName]), kw) &&
			!strings.HasPrefix(strings.ToLower(it.props[PropTitle]), kw) &&
			!strings.HasPrefix(strings.ToLower(it.props[PropDescription]), kw) {
			return false
		}
	}
	if q.Mimetype != "" && it.mimetype != q.Mimetype && it.props[PropMimetype] != q.Mimetype {
		return false
	}
	if q.State != "" && it.props[PropState] != q.State {
		return false
	}
	if q.WithoutFlag != "" && it.flags[q.WithoutFlag] {
		return false
	}
	// RFC 3339 strings order lexically, so date bounds compare as text.
	if !q.ModifiedBefore.IsZero() {
		mod := it.props[PropModified]
		if mod == "" || mod >= FormatTime(q.ModifiedBefore) {
			return false
		}
	}
	if !q.ModifiedAfter.IsZero() {
		mod := it.props[PropModified]
		if mod == "" || mod <= FormatTime(q.ModifiedAfter) {
			return false
		}
	}
	return true
}

// Exists reports whether the item is present.
func (m *MemoryRepository) Exists(ctx context.Context, ref Ref) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.items[ref]
	return ok, nil
}

// Create registers a new item with a copy of the given properties.
func (m *MemoryRepository) Create(ctx context.Context, ref Ref, props map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it := &memoryItem{
		props: make(map[string]string, len(props)),
		flags: make(map[string]bool),
	}
	for k, v := range props {
		it.props[k] = v
	}
	m.items[ref] = it
	return nil
}

// GetProperty returns the named property, "" when unset.
func (m *MemoryRepository) GetProperty(ctx context.Context, ref Ref, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.items[ref]
	if !ok {
		return "", NewNotFoundError(ref)
	}
	return it.props[key], nil
}

// SetProperty writes one property value.
func (m *MemoryRepository) SetProperty(ctx context.Context, ref Ref, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[ref]
	if !ok {
		return NewNotFoundError(ref)
	}
	it.props[key] = value
	return nil
}

// Properties returns a copy of the full property bag.
func (m *MemoryRepository) Properties(ctx context.Context, ref Ref) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.items[ref]
	if !ok {
		return nil, NewNotFoundError(ref)
	}
	props := make(map[string]string, len(it.props))
	for k, v := range it.props {
		props[k] = v
	}
	return props, nil
}

// HasFlag reports whether the flag is set.
func (m *MemoryRepository) HasFlag(ctx context.Context, ref Ref, flag string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.items[ref]
	if !ok {
		return false, NewNotFoundError(ref)
	}
	return it.flags[flag], nil
}

// SetFlag sets the flag; setting it twice is a no-op.
func (m *MemoryRepository) SetFlag(ctx context.Context, ref Ref, flag string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[ref]
	if !ok {
		return NewNotFoundError(ref)
	}
	it.flags[flag] = true
	return nil
}

// OpenContent returns the stored content stream and mimetype.
func (m *MemoryRepository) OpenContent(ctx context.Context, ref Ref) (io.ReadCloser, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.items[ref]
	if !ok {
		return nil, "", NewNotFoundError(ref)
	}
	if it.content == nil {
		return nil, "", NewNotFoundError(ref)
	}
	return io.NopCloser(bytes.NewReader(it.content)), it.mimetype, nil
}

// PutContent replaces the stored content.
func (m *MemoryRepository) PutContent(ctx context.Context, ref Ref, mimetype string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return NewStorageError("memory", "put_content", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.items[ref]
	if !ok {
		return NewNotFoundError(ref)
	}
	it.content = data
	it.mimetype = mimetype
	it.props[PropMimetype] = mimetype
	return nil
}

// Delete removes the item entirely.
func (m *MemoryRepository) Delete(ctx context.Context, ref Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[ref]; !ok {
		return NewNotFoundError(ref)
	}
	delete(m.items, ref)
	return nil
}

// Close releases nothing for the in-memory backend.
func (m *MemoryRepository) Close() error {
	return nil
}
