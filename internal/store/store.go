package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for every timestamp the store writes.
// Fixed width keeps lexical ordering of stored timestamps equal to chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrNotFound is returned when a document does not exist in the requested collection.
var ErrNotFound = errors.New("document not found")

// Direction is the sort direction for QueryOrdered.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type serverTimestamp struct{}

// ServerTimestamp may be used as a value in any field map passed to Insert, Set or Update.
// The store replaces it with its own clock at write time.
var ServerTimestamp = serverTimestamp{}

// Document is a stored record: its id plus the raw JSON object body.
// The body never contains the id; Decode hands it to types implementing IDSetter.
type Document struct {
	ID   string
	Data json.RawMessage
}

// IDSetter is implemented by records that carry their document id as a field.
type IDSetter interface {
	SetID(id string)
}

// Decode unmarshals the document body into v and, when v implements IDSetter, sets its id.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", d.ID, err)
	}
	if s, ok := v.(IDSetter); ok {
		s.SetID(d.ID)
	}
	return nil
}

// Reader is the read half of the store contract.
type Reader interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	QueryByEquality(ctx context.Context, collection, field string, value any) ([]Document, error)
	QueryOrdered(ctx context.Context, collection, field string, dir Direction) ([]Document, error)
}

// Writer is the write half of the store contract.
type Writer interface {
	// Insert stores data under a new server-assigned id and returns it.
	Insert(ctx context.Context, collection string, data any) (string, error)
	// Set creates or fully replaces the document with the given id.
	Set(ctx context.Context, collection, id string, data any) error
	// Update merges the given top-level fields into an existing document.
	// Returns ErrNotFound when the document does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
}

// Tx is a store transaction. Writes become visible only when the transaction commits.
type Tx interface {
	Reader
	Writer
	// GetForUpdate reads a document and holds it against concurrent transactions until commit.
	GetForUpdate(ctx context.Context, collection, id string) (*Document, error)
}

// DocumentStore is the single authoritative remote store all services operate on.
type DocumentStore interface {
	Reader
	Writer
	// BatchWrite applies all ops atomically.
	BatchWrite(ctx context.Context, ops []WriteOp) error
	// RunInTx runs fn in a transaction, committing when fn returns nil and rolling back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// OpKind identifies the kind of a batched write.
type OpKind int

const (
	OpInsert OpKind = iota
	OpSet
	OpUpdate
	OpDelete
)

// WriteOp is one write inside BatchWrite. Data is used by OpInsert and OpSet,
// Fields by OpUpdate. OpInsert ignores ID unless it is set.
type WriteOp struct {
	Kind       OpKind
	Collection string
	ID         string
	Data       any
	Fields     map[string]any
}

// encodeFields turns a record or field map into top-level JSON fields, dropping "id"
// and resolving ServerTimestamp against now.
func encodeFields(data any, now time.Time) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)

	if m, ok := data.(map[string]any); ok {
		for k, v := range m {
			if v == ServerTimestamp {
				v = now.UTC().Format(TimeLayout)
			}
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode field %q: %w", k, err)
			}
			out[k] = b
		}
		delete(out, "id")
		return out, nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("document must encode to a JSON object: %w", err)
	}
	delete(out, "id")
	return out, nil
}

func validateDirection(dir Direction) error {
	switch dir {
	case Asc, Desc:
		return nil
	default:
		return fmt.Errorf("invalid sort direction %q", dir)
	}
}
