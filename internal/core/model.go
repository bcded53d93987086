package core

import (
	"time"

	"store-admin/internal/store"
)

// Actor is the authenticated admin performing an operation, as supplied by the identity provider.
type Actor struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

func (a Actor) validate(op string) error {
	if a.UID == "" {
		return Validationf(op, "actor uid is required")
	}
	return nil
}

// Clock returns the current instant. Services take one so tests can pin time.
type Clock func() time.Time

func (c Clock) orSystem() Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// toMillis truncates to the millisecond precision timestamps are stored with.
func toMillis(t time.Time) time.Time {
	return t.Truncate(time.Millisecond)
}

// decodeAll decodes every document into a T. T's pointer receives the document id when it
// implements store.IDSetter.
func decodeAll[T any](docs []store.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeOne[T any](doc *store.Document) (*T, error) {
	var v T
	if err := doc.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
