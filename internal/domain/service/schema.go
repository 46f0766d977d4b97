package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchemaMismatch is wrapped when artifacts disagree with each other.
var ErrSchemaMismatch = errors.New("feature schema mismatch")

// FeatureSchema is the ordered column list a classifier was trained on.
type FeatureSchema struct {
	columns []string
	index   map[string]int
}

// NewFeatureSchema validates and indexes cols.
func NewFeatureSchema(cols []string) (*FeatureSchema, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: schema has no columns", ErrSchemaMismatch)
	}

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("%w: blank column at position %d", ErrSchemaMismatch, i)
		}
		if prev, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: column %q repeated at positions %d and %d", ErrSchemaMismatch, c, prev, i)
		}
		index[c] = i
	}

	return &FeatureSchema{
		columns: append([]string(nil), cols...),
		index:   index,
	}, nil
}

// Columns returns a copy of the ordered columns.
func (s *FeatureSchema) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Len returns the number of columns.
func (s *FeatureSchema) Len() int { return len(s.columns) }

// Index returns the position of name.
func (s *FeatureSchema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}
