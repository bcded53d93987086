package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore. Transactions are serialized under one mutex
// and applied to a copy of the state, so a failed transaction leaves no trace.
type MemoryStore struct {
	mu    sync.Mutex
	now   func() time.Time
	state *memState
}

type memDoc struct {
	seq    int64
	fields map[string]json.RawMessage
}

type memState struct {
	seq         int64
	collections map[string]map[string]*memDoc
}

// NewMemoryStore returns an empty MemoryStore using the wall clock for ServerTimestamp.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock returns an empty MemoryStore using now for ServerTimestamp.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		now:   now,
		state: &memState{collections: make(map[string]map[string]*memDoc)},
	}
}

// Count returns the number of documents in a collection.
func (s *MemoryStore) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.collections[collection])
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.get(collection, id)
}

func (s *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.list(collection), nil
}

func (s *MemoryStore) QueryByEquality(ctx context.Context, collection, field string, value any) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.queryByEquality(collection, field, value)
}

func (s *MemoryStore) QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.queryOrdered(collection, field, dir)
}

func (s *MemoryStore) Insert(ctx context.Context, collection string, data any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.insert(collection, "", data, s.now())
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.set(collection, id, data, s.now())
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.update(collection, id, fields, s.now())
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.delete(collection, id)
	return nil
}

func (s *MemoryStore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	return s.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		mt := tx.(*memTx)
		for i, op := range ops {
			if err := mt.apply(op); err != nil {
				return fmt.Errorf("batch op %d: %w", i, err)
			}
		}
		return nil
	})
}

func (s *MemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{state: s.state.clone(), now: s.now()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// ── transaction ──────────────────────────────────────────────────────────────

type memTx struct {
	state *memState
	now   time.Time
}

func (t *memTx) Get(ctx context.Context, collection, id string) (*Document, error) {
	return t.state.get(collection, id)
}

func (t *memTx) GetForUpdate(ctx context.Context, collection, id string) (*Document, error) {
	return t.state.get(collection, id)
}

func (t *memTx) List(ctx context.Context, collection string) ([]Document, error) {
	return t.state.list(collection), nil
}

func (t *memTx) QueryByEquality(ctx context.Context, collection, field string, value any) ([]Document, error) {
	return t.state.queryByEquality(collection, field, value)
}

func (t *memTx) QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error) {
	return t.state.queryOrdered(collection, field, dir)
}

func (t *memTx) Insert(ctx context.Context, collection string, data any) (string, error) {
	return t.state.insert(collection, "", data, t.now)
}

func (t *memTx) Set(ctx context.Context, collection, id string, data any) error {
	return t.state.set(collection, id, data, t.now)
}

func (t *memTx) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	return t.state.update(collection, id, fields, t.now)
}

func (t *memTx) Delete(ctx context.Context, collection, id string) error {
	t.state.delete(collection, id)
	return nil
}

func (t *memTx) apply(op WriteOp) error {
	switch op.Kind {
	case OpInsert:
		_, err := t.state.insert(op.Collection, op.ID, op.Data, t.now)
		return err
	case OpSet:
		return t.state.set(op.Collection, op.ID, op.Data, t.now)
	case OpUpdate:
		return t.state.update(op.Collection, op.ID, op.Fields, t.now)
	case OpDelete:
		t.state.delete(op.Collection, op.ID)
		return nil
	default:
		return fmt.Errorf("unknown op kind %d", op.Kind)
	}
}

// ── state ────────────────────────────────────────────────────────────────────

func (st *memState) clone() *memState {
	c := &memState{seq: st.seq, collections: make(map[string]map[string]*memDoc, len(st.collections))}
	for name, docs := range st.collections {
		cd := make(map[string]*memDoc, len(docs))
		for id, d := range docs {
			fields := make(map[string]json.RawMessage, len(d.fields))
			for k, v := range d.fields {
				fields[k] = v
			}
			cd[id] = &memDoc{seq: d.seq, fields: fields}
		}
		c.collections[name] = cd
	}
	return c
}

func (st *memState) get(collection, id string) (*Document, error) {
	d, ok := st.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	doc, err := toDocument(id, d)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

type seqDoc struct {
	seq int64
	doc Document
}

func (st *memState) sorted(collection string, keep func(*memDoc) bool) []seqDoc {
	var out []seqDoc
	for id, d := range st.collections[collection] {
		if keep != nil && !keep(d) {
			continue
		}
		doc, err := toDocument(id, d)
		if err != nil {
			continue
		}
		out = append(out, seqDoc{seq: d.seq, doc: doc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (st *memState) list(collection string) []Document {
	return documents(st.sorted(collection, nil))
}

func (st *memState) queryByEquality(collection, field string, value any) ([]Document, error) {
	want, err := normalizeValue(value)
	if err != nil {
		return nil, err
	}
	rows := st.sorted(collection, func(d *memDoc) bool {
		raw, ok := d.fields[field]
		if !ok {
			return false
		}
		var got any
		if err := json.Unmarshal(raw, &got); err != nil {
			return false
		}
		return reflect.DeepEqual(got, want)
	})
	return documents(rows), nil
}

func (st *memState) queryOrdered(collection, field string, dir Direction) ([]Document, error) {
	if err := validateDirection(dir); err != nil {
		return nil, err
	}
	rows := st.sorted(collection, nil)
	values := make([]any, len(rows))
	for i, r := range rows {
		var fields map[string]json.RawMessage
		_ = json.Unmarshal(r.doc.Data, &fields)
		if raw, ok := fields[field]; ok {
			_ = json.Unmarshal(raw, &values[i])
		}
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		c := compareValues(values[idx[a]], values[idx[b]])
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
	out := make([]Document, len(rows))
	for i, j := range idx {
		out[i] = rows[j].doc
	}
	return out, nil
}

func (st *memState) insert(collection, id string, data any, now time.Time) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := st.collections[collection][id]; exists {
		return "", fmt.Errorf("%s/%s already exists", collection, id)
	}
	fields, err := encodeFields(data, now)
	if err != nil {
		return "", err
	}
	st.put(collection, id, fields)
	return id, nil
}

func (st *memState) set(collection, id string, data any, now time.Time) error {
	if id == "" {
		return fmt.Errorf("set on %s requires an id", collection)
	}
	fields, err := encodeFields(data, now)
	if err != nil {
		return err
	}
	if d, ok := st.collections[collection][id]; ok {
		d.fields = fields
		return nil
	}
	st.put(collection, id, fields)
	return nil
}

func (st *memState) update(collection, id string, fields map[string]any, now time.Time) error {
	d, ok := st.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	patch, err := encodeFields(fields, now)
	if err != nil {
		return err
	}
	for k, v := range patch {
		d.fields[k] = v
	}
	return nil
}

func (st *memState) delete(collection, id string) {
	delete(st.collections[collection], id)
}

func (st *memState) put(collection, id string, fields map[string]json.RawMessage) {
	docs, ok := st.collections[collection]
	if !ok {
		docs = make(map[string]*memDoc)
		st.collections[collection] = docs
	}
	st.seq++
	docs[id] = &memDoc{seq: st.seq, fields: fields}
}

func toDocument(id string, d *memDoc) (Document, error) {
	b, err := json.Marshal(d.fields)
	if err != nil {
		return Document{}, fmt.Errorf("failed to encode document %s: %w", id, err)
	}
	return Document{ID: id, Data: b}, nil
}

func documents(rows []seqDoc) []Document {
	out := make([]Document, len(rows))
	for i, r := range rows {
		out[i] = r.doc
	}
	return out
}

// normalizeValue round-trips v through JSON so it compares equal to decoded stored values.
func normalizeValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query value: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// compareValues orders decoded JSON scalars: missing < bool < number < string.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}
