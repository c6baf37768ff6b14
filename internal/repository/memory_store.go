package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/cms-admin/internal/domain"
)

// MemoryCollection is an in-process Store used by tests and local tooling.
type MemoryCollection[T any, PT interface {
	*T
	domain.Document
}] struct {
	mu   sync.RWMutex
	name string
	docs map[string][]byte
	now  func() time.Time
	seq  map[string]int
	next int
}

// NewMemoryCollection creates an empty in-memory collection.
func NewMemoryCollection[T any, PT interface {
	*T
	domain.Document
}](name string) *MemoryCollection[T, PT] {
	return &MemoryCollection[T, PT]{
		name: name,
		docs: make(map[string][]byte),
		seq:  make(map[string]int),
		now:  time.Now,
	}
}

func (m *MemoryCollection[T, PT]) Name() string { return m.name }

func (m *MemoryCollection[T, PT]) Insert(_ context.Context, doc PT) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := doc.Metadata()
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if _, exists := m.docs[meta.ID]; exists {
		return fmt.Errorf("insert %s document %s: %w", m.name, meta.ID, ErrDuplicate)
	}
	now := m.now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	return m.put(doc)
}

func (m *MemoryCollection[T, PT]) Get(_ context.Context, id string) (PT, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.docs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return decodeDoc[T, PT](body)
}

func (m *MemoryCollection[T, PT]) FindOne(ctx context.Context, filter Filter) (PT, error) {
	docs, err := m.Find(ctx, filter, ListOptions{})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, pgx.ErrNoRows
	}
	return docs[len(docs)-1], nil
}

func (m *MemoryCollection[T, PT]) Find(_ context.Context, filter Filter, opts ListOptions) ([]PT, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.docs))
	for id, body := range m.docs {
		ok, err := matches(body, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return m.seq[ids[i]] > m.seq[ids[j]] })

	if opts.Offset > 0 {
		if opts.Offset >= len(ids) {
			ids = nil
		} else {
			ids = ids[opts.Offset:]
		}
	}
	if opts.Limit > 0 && len(ids) > opts.Limit {
		ids = ids[:opts.Limit]
	}

	result := make([]PT, 0, len(ids))
	for _, id := range ids {
		doc, err := decodeDoc[T, PT](m.docs[id])
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, nil
}

func (m *MemoryCollection[T, PT]) Count(ctx context.Context, filter Filter) (int, error) {
	docs, err := m.Find(ctx, filter, ListOptions{})
	return len(docs), err
}

func (m *MemoryCollection[T, PT]) Update(_ context.Context, doc PT) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := doc.Metadata()
	if _, ok := m.docs[meta.ID]; !ok {
		return pgx.ErrNoRows
	}
	meta.UpdatedAt = m.now().UTC()
	return m.put(doc)
}

func (m *MemoryCollection[T, PT]) Upsert(_ context.Context, doc PT) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := doc.Metadata()
	now := m.now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
	return m.put(doc)
}

func (m *MemoryCollection[T, PT]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.docs, id)
	delete(m.seq, id)
	return nil
}

func (m *MemoryCollection[T, PT]) put(doc PT) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", m.name, err)
	}
	id := doc.Metadata().ID
	if _, ok := m.seq[id]; !ok {
		m.next++
		m.seq[id] = m.next
	}
	m.docs[id] = body
	return nil
}

func decodeDoc[T any, PT interface {
	*T
	domain.Document
}](body []byte) (PT, error) {
	doc := PT(new(T))
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func matches(body []byte, filter Filter) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false, err
	}
	for key, want := range filter {
		wantRaw, err := json.Marshal(want)
		if err != nil {
			return false, err
		}
		if !bytes.Equal(fields[key], wantRaw) {
			return false, nil
		}
	}
	return true, nil
}
