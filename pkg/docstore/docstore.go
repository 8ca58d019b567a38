package docstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("document not found")

type (
	// Filter is a field == value predicate applied server-side where the
	// backend supports it.
	Filter struct {
		Field string
		Value interface{}
	}

	Document struct {
		ID   string
		Data map[string]interface{}
	}

	// Store is the document-store contract the repositories depend on.
	// Documents are plain maps; the repositories own the mapping to and
	// from entities.
	Store interface {
		Create(ctx context.Context, collection string, data map[string]interface{}) (string, error)
		Set(ctx context.Context, collection, id string, data map[string]interface{}) error
		Get(ctx context.Context, collection, id string) (map[string]interface{}, error)
		Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
		Delete(ctx context.Context, collection, id string) error
		Query(ctx context.Context, collection string, filters []Filter, orderBy string, desc bool) ([]Document, error)
	}
)
