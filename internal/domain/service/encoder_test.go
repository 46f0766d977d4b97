package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwise/churn/internal/domain/service"
	"github.com/streamwise/churn/internal/domain/valueobject"
	"github.com/streamwise/churn/pkg/testutil"
)

func profileWith(t *testing.T, mutate func(a *valueobject.ProfileAttributes)) valueobject.SubscriberProfile {
	t.Helper()
	attrs := valueobject.DefaultAttributes()
	if mutate != nil {
		mutate(&attrs)
	}
	p, err := valueobject.NewSubscriberProfile(attrs)
	require.NoError(t, err)
	return p
}

func TestEncode_ReproducesTrainingRow(t *testing.T) {
	enc := newTestEncoder(t)

	vec, err := enc.Encode(profileWith(t, nil))
	require.NoError(t, err)

	expected := make([]float64, len(trainingColumns))
	copy(expected, []float64{-1.5, -1.6, -1.8, -0.5025, -1, -0.5})
	set := func(col string) {
		for i, c := range trainingColumns {
			if c == col {
				expected[i] = 1
			}
		}
	}
	set("gender_Male")
	set("region_North")
	set("device_Mobile")

	assert.Equal(t, trainingColumns, vec.Columns)
	testutil.AssertFloatsInDelta(t, expected, vec.Values, 1e-9)
}

func TestEncode_UnseenLevelZeroFills(t *testing.T) {
	enc := newTestEncoder(t)

	vec, err := enc.Encode(profileWith(t, func(a *valueobject.ProfileAttributes) {
		a.Region = "Antarctica"
		a.Device = "Smart Fridge"
	}))
	require.NoError(t, err)

	require.Len(t, vec.Values, len(trainingColumns))
	assert.Equal(t, trainingColumns, vec.Columns)
	for _, col := range []string{"region_North", "region_South", "region_West", "device_Mobile", "device_TV", "device_Tablet"} {
		v, ok := vec.Get(col)
		require.True(t, ok)
		assert.Zero(t, v, col)
	}
	g, _ := vec.Get("gender_Male")
	assert.Equal(t, 1.0, g)
}

func TestEncode_BaselineLevelsAllZero(t *testing.T) {
	enc := newTestEncoder(t)

	vec, err := enc.Encode(profileWith(t, func(a *valueobject.ProfileAttributes) {
		a.Gender = "Female"
		a.Region = "East"
		a.Device = "Laptop"
	}))
	require.NoError(t, err)

	for i, col := range trainingColumns[len(valueobject.NumericFields):] {
		assert.Zero(t, vec.Values[len(valueobject.NumericFields)+i], col)
	}
}

func TestEncode_IgnoresUnknownSchemaColumns(t *testing.T) {
	cols := append([]string{"tenure_bucket_long"}, trainingColumns...)
	schema, err := service.NewFeatureSchema(cols)
	require.NoError(t, err)
	enc, err := service.NewFeatureEncoder(schema, newTestScaler(t))
	require.NoError(t, err)

	vec, err := enc.Encode(profileWith(t, nil))
	require.NoError(t, err)
	assert.Zero(t, vec.Values[0])
	assert.Len(t, vec.Values, len(cols))
}

func TestEncode_Deterministic(t *testing.T) {
	enc := newTestEncoder(t)
	p := profileWith(t, nil)

	a, err := enc.Encode(p)
	require.NoError(t, err)
	b, err := enc.Encode(p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestNewFeatureEncoder_Rejects(t *testing.T) {
	t.Run("numeric column missing from schema", func(t *testing.T) {
		schema, err := service.NewFeatureSchema(trainingColumns[1:])
		require.NoError(t, err)
		_, err = service.NewFeatureEncoder(schema, newTestScaler(t))
		require.ErrorIs(t, err, service.ErrSchemaMismatch)
	})

	t.Run("scaler missing a numeric field", func(t *testing.T) {
		schema, err := service.NewFeatureSchema(trainingColumns)
		require.NoError(t, err)
		scaler, err := service.NewStandardScaler([]string{"age"}, []float64{0}, []float64{1})
		require.NoError(t, err)
		_, err = service.NewFeatureEncoder(schema, scaler)
		require.ErrorIs(t, err, service.ErrSchemaMismatch)
	})

	t.Run("scaler column is categorical", func(t *testing.T) {
		schema, err := service.NewFeatureSchema(trainingColumns)
		require.NoError(t, err)
		s := newTestScaler(t)
		s.Columns = append(s.Columns, "gender_Male")
		s.Mean = append(s.Mean, 0)
		s.Scale = append(s.Scale, 1)
		_, err = service.NewFeatureEncoder(schema, s)
		require.ErrorIs(t, err, service.ErrSchemaMismatch)
	})
}

func TestDescribe(t *testing.T) {
	enc := newTestEncoder(t)

	desc := enc.Describe(profileWith(t, func(a *valueobject.ProfileAttributes) {
		a.Region = "Antarctica"
	}))
	require.Len(t, desc, len(valueobject.CategoricalFields))

	byField := map[string]valueobject.FieldEncoding{}
	for _, d := range desc {
		byField[d.Field] = d
	}

	assert.Equal(t, "gender_Male", byField["gender"].Column)
	assert.True(t, byField["subscription_type"].Baseline)
	assert.Empty(t, byField["subscription_type"].Column)
	assert.True(t, byField["region"].Unseen)
	assert.Equal(t, "Antarctica", byField["region"].Value)
}
