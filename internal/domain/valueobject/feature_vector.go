package valueobject

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// FeatureVector is a single encoded row aligned to a feature schema.
type FeatureVector struct {
	Columns []string
	Values  []float64
}

// Get returns the value of column name.
func (v FeatureVector) Get(name string) (float64, bool) {
	for i, c := range v.Columns {
		if c == name {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Len returns the number of columns.
func (v FeatureVector) Len() int { return len(v.Values) }

// Map returns the vector keyed by column name.
func (v FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.Columns))
	for i, c := range v.Columns {
		out[c] = v.Values[i]
	}
	return out
}

// Hash is a stable hex SHA-256 digest of columns and values.
func (v FeatureVector) Hash() string {
	h := sha256.New()
	var buf [8]byte
	for i, c := range v.Columns {
		h.Write([]byte(c))
		h.Write([]byte{0})
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v.Values[i]))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FieldEncoding reports how one categorical field was encoded.
type FieldEncoding struct {
	Field string `json:"field"`
	Value string `json:"value"`
	// Column is the indicator set to 1, empty when the level encodes as all zeros.
	Column string `json:"column,omitempty"`
	// Baseline is true when the level is one the schema knows only as the dropped reference.
	Baseline bool `json:"baseline"`
	// Unseen is true when the level matched nothing in the schema.
	Unseen bool `json:"unseen"`
}
