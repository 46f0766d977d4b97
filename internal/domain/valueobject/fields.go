package valueobject

// Canonical subscriber field names. They double as feature column names and
// as indicator prefixes (<field>_<level>).
const (
	FieldAge                = "age"
	FieldWatchHours         = "watch_hours"
	FieldLastLoginDays      = "last_login_days"
	FieldMonthlyFee         = "monthly_fee"
	FieldNumberOfProfiles   = "number_of_profiles"
	FieldAvgWatchTimePerDay = "avg_watch_time_per_day"

	FieldGender           = "gender"
	FieldSubscriptionType = "subscription_type"
	FieldRegion           = "region"
	FieldDevice           = "device"
	FieldPaymentMethod    = "payment_method"
	FieldFavoriteGenre    = "favorite_genre"
)

// NumericFields lists the scaled columns in training order.
var NumericFields = []string{
	FieldAge,
	FieldWatchHours,
	FieldLastLoginDays,
	FieldMonthlyFee,
	FieldNumberOfProfiles,
	FieldAvgWatchTimePerDay,
}

// CategoricalFields lists the one-hot encoded fields in training order.
var CategoricalFields = []string{
	FieldGender,
	FieldSubscriptionType,
	FieldRegion,
	FieldDevice,
	FieldPaymentMethod,
	FieldFavoriteGenre,
}

// Form options. The first entry of each list is the default selection.
var (
	GenderOptions           = []string{"Male", "Female"}
	SubscriptionTypeOptions = []string{"Basic", "Standard", "Premium"}
	RegionOptions           = []string{"North", "South", "East", "West"}
	DeviceOptions           = []string{"Mobile", "Tablet", "TV", "Laptop"}
	PaymentMethodOptions    = []string{"Credit Card", "Debit Card", "Paypal"}
	FavoriteGenreOptions    = []string{"Action", "Drama", "Comedy", "Horror", "Sci-Fi"}
)

// CategoricalOptions maps each categorical field to its form options.
func CategoricalOptions() map[string][]string {
	return map[string][]string{
		FieldGender:           GenderOptions,
		FieldSubscriptionType: SubscriptionTypeOptions,
		FieldRegion:           RegionOptions,
		FieldDevice:           DeviceOptions,
		FieldPaymentMethod:    PaymentMethodOptions,
		FieldFavoriteGenre:    FavoriteGenreOptions,
	}
}

// FieldRange is the accepted closed interval of a numeric field.
type FieldRange struct {
	Min float64
	Max float64
}

// NumericRanges are the bounds enforced by NewSubscriberProfile.
var NumericRanges = map[string]FieldRange{
	FieldAge:                {Min: 0, Max: 120},
	FieldWatchHours:         {Min: 0, Max: 200},
	FieldLastLoginDays:      {Min: 0, Max: 365},
	FieldMonthlyFee:         {Min: 0, Max: 100},
	FieldNumberOfProfiles:   {Min: 1, Max: 10},
	FieldAvgWatchTimePerDay: {Min: 0, Max: 24},
}
