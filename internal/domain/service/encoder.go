package service

import (
	"fmt"
	"slices"

	"github.com/streamwise/churn/internal/domain/valueobject"
)

// FeatureEncoder turns a subscriber profile into a row aligned with the
// schema: drop-first one-hot indicators reindexed with zero fill, then the
// numeric columns overwritten with scaler output.
type FeatureEncoder struct {
	schema *FeatureSchema
	scaler *StandardScaler
}

// NewFeatureEncoder fails unless every numeric field is in the schema and the
// scaler covers exactly the numeric fields.
func NewFeatureEncoder(schema *FeatureSchema, scaler *StandardScaler) (*FeatureEncoder, error) {
	for _, f := range valueobject.NumericFields {
		if _, ok := schema.Index(f); !ok {
			return nil, fmt.Errorf("%w: numeric column %q not in schema", ErrSchemaMismatch, f)
		}
		if !slices.Contains(scaler.Columns, f) {
			return nil, fmt.Errorf("%w: scaler does not cover %q", ErrSchemaMismatch, f)
		}
	}
	for _, c := range scaler.Columns {
		if !slices.Contains(valueobject.NumericFields, c) {
			return nil, fmt.Errorf("%w: scaler column %q is not a numeric field", ErrSchemaMismatch, c)
		}
	}
	return &FeatureEncoder{schema: schema, scaler: scaler}, nil
}

// Schema returns the schema the encoder aligns to.
func (e *FeatureEncoder) Schema() *FeatureSchema { return e.schema }

// IndicatorColumn is the pandas get_dummies name for field=value.
func IndicatorColumn(field, value string) string {
	return field + "_" + value
}

// Encode produces the aligned row. Unseen and baseline levels leave their
// field's indicators at zero.
func (e *FeatureEncoder) Encode(profile valueobject.SubscriberProfile) (valueobject.FeatureVector, error) {
	values := make([]float64, e.schema.Len())

	categorical := profile.Categorical()
	for _, field := range valueobject.CategoricalFields {
		if i, ok := e.indicatorIndex(field, categorical[field]); ok {
			values[i] = 1
		}
	}

	scaled, err := e.scaler.Transform(profile.Numeric())
	if err != nil {
		return valueobject.FeatureVector{}, fmt.Errorf("scale numeric features: %w", err)
	}
	for col, v := range scaled {
		i, _ := e.schema.Index(col)
		values[i] = v
	}

	return valueobject.FeatureVector{Columns: e.schema.Columns(), Values: values}, nil
}

// Describe reports how each categorical field of profile maps onto the schema.
func (e *FeatureEncoder) Describe(profile valueobject.SubscriberProfile) []valueobject.FieldEncoding {
	categorical := profile.Categorical()
	options := valueobject.CategoricalOptions()

	out := make([]valueobject.FieldEncoding, 0, len(valueobject.CategoricalFields))
	for _, field := range valueobject.CategoricalFields {
		value := categorical[field]
		enc := valueobject.FieldEncoding{Field: field, Value: value}
		switch _, ok := e.indicatorIndex(field, value); {
		case ok:
			enc.Column = IndicatorColumn(field, value)
		case slices.Contains(options[field], value):
			enc.Baseline = true
		default:
			enc.Unseen = true
		}
		out = append(out, enc)
	}
	return out
}

func (e *FeatureEncoder) indicatorIndex(field, value string) (int, bool) {
	col := IndicatorColumn(field, value)
	if slices.Contains(valueobject.NumericFields, col) {
		return 0, false
	}
	return e.schema.Index(col)
}
