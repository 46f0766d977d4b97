package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamwise/churn/internal/domain/service"
)

// trainingColumns mirrors a drop-first get_dummies frame: the alphabetically
// first level of each field is the baseline.
var trainingColumns = []string{
	"age", "watch_hours", "last_login_days", "monthly_fee", "number_of_profiles", "avg_watch_time_per_day",
	"gender_Male",
	"subscription_type_Premium", "subscription_type_Standard",
	"region_North", "region_South", "region_West",
	"device_Mobile", "device_TV", "device_Tablet",
	"payment_method_Debit Card", "payment_method_Paypal",
	"favorite_genre_Comedy", "favorite_genre_Drama", "favorite_genre_Horror", "favorite_genre_Sci-Fi",
}

func newTestScaler(t *testing.T) *service.StandardScaler {
	t.Helper()
	s, err := service.NewStandardScaler(
		[]string{"age", "watch_hours", "last_login_days", "monthly_fee", "number_of_profiles", "avg_watch_time_per_day"},
		[]float64{40, 50, 30, 12, 3, 2},
		[]float64{10, 25, 15, 4, 2, 0},
	)
	require.NoError(t, err)
	return s
}

func newTestEncoder(t *testing.T) *service.FeatureEncoder {
	t.Helper()
	schema, err := service.NewFeatureSchema(trainingColumns)
	require.NoError(t, err)
	enc, err := service.NewFeatureEncoder(schema, newTestScaler(t))
	require.NoError(t, err)
	return enc
}
