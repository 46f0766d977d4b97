package valueobject

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidProfile is wrapped by every profile validation failure.
var ErrInvalidProfile = errors.New("invalid subscriber profile")

// ProfileAttributes is the raw, unvalidated form of a subscriber record.
type ProfileAttributes struct {
	Age                int
	Gender             string
	SubscriptionType   string
	WatchHours         float64
	LastLoginDays      int
	Region             string
	Device             string
	MonthlyFee         decimal.Decimal
	PaymentMethod      string
	NumberOfProfiles   int
	AvgWatchTimePerDay float64
	FavoriteGenre      string
}

// SubscriberProfile is an immutable, validated subscriber record.
type SubscriberProfile struct {
	monthlyFee         decimal.Decimal
	gender             string
	subscriptionType   string
	region             string
	device             string
	paymentMethod      string
	favoriteGenre      string
	watchHours         float64
	avgWatchTimePerDay float64
	age                int
	lastLoginDays      int
	numberOfProfiles   int
}

// NewSubscriberProfile validates attrs against the form ranges. Categorical
// values are trimmed but otherwise accepted as-is; unseen levels are the
// encoder's concern.
func NewSubscriberProfile(attrs ProfileAttributes) (SubscriberProfile, error) {
	p := SubscriberProfile{
		age:                attrs.Age,
		gender:             strings.TrimSpace(attrs.Gender),
		subscriptionType:   strings.TrimSpace(attrs.SubscriptionType),
		watchHours:         attrs.WatchHours,
		lastLoginDays:      attrs.LastLoginDays,
		region:             strings.TrimSpace(attrs.Region),
		device:             strings.TrimSpace(attrs.Device),
		monthlyFee:         attrs.MonthlyFee,
		paymentMethod:      strings.TrimSpace(attrs.PaymentMethod),
		numberOfProfiles:   attrs.NumberOfProfiles,
		avgWatchTimePerDay: attrs.AvgWatchTimePerDay,
		favoriteGenre:      strings.TrimSpace(attrs.FavoriteGenre),
	}

	for _, field := range NumericFields {
		v := p.numericValue(field)
		r := NumericRanges[field]
		if math.IsNaN(v) || v < r.Min || v > r.Max {
			return SubscriberProfile{}, fmt.Errorf("%w: %s must be between %g and %g, got %g",
				ErrInvalidProfile, field, r.Min, r.Max, v)
		}
	}
	for field, v := range p.Categorical() {
		if v == "" {
			return SubscriberProfile{}, fmt.Errorf("%w: %s is required", ErrInvalidProfile, field)
		}
	}
	return p, nil
}

// DefaultProfile returns the record the form starts with.
func DefaultProfile() SubscriberProfile {
	p, _ := NewSubscriberProfile(DefaultAttributes())
	return p
}

// DefaultAttributes returns the initial form values.
func DefaultAttributes() ProfileAttributes {
	return ProfileAttributes{
		Age:                25,
		Gender:             GenderOptions[0],
		SubscriptionType:   SubscriptionTypeOptions[0],
		WatchHours:         10,
		LastLoginDays:      3,
		Region:             RegionOptions[0],
		Device:             DeviceOptions[0],
		MonthlyFee:         decimal.RequireFromString("9.99"),
		PaymentMethod:      PaymentMethodOptions[0],
		NumberOfProfiles:   1,
		AvgWatchTimePerDay: 1.5,
		FavoriteGenre:      FavoriteGenreOptions[0],
	}
}

func (p SubscriberProfile) numericValue(field string) float64 {
	switch field {
	case FieldAge:
		return float64(p.age)
	case FieldWatchHours:
		return p.watchHours
	case FieldLastLoginDays:
		return float64(p.lastLoginDays)
	case FieldMonthlyFee:
		return p.monthlyFee.InexactFloat64()
	case FieldNumberOfProfiles:
		return float64(p.numberOfProfiles)
	case FieldAvgWatchTimePerDay:
		return p.avgWatchTimePerDay
	default:
		return math.NaN()
	}
}

// Numeric returns the six numeric fields keyed by canonical name.
func (p SubscriberProfile) Numeric() map[string]float64 {
	out := make(map[string]float64, len(NumericFields))
	for _, f := range NumericFields {
		out[f] = p.numericValue(f)
	}
	return out
}

// Categorical returns the six categorical fields keyed by canonical name.
func (p SubscriberProfile) Categorical() map[string]string {
	return map[string]string{
		FieldGender:           p.gender,
		FieldSubscriptionType: p.subscriptionType,
		FieldRegion:           p.region,
		FieldDevice:           p.device,
		FieldPaymentMethod:    p.paymentMethod,
		FieldFavoriteGenre:    p.favoriteGenre,
	}
}

// Attributes returns the profile as raw attributes.
func (p SubscriberProfile) Attributes() ProfileAttributes {
	return ProfileAttributes{
		Age:                p.age,
		Gender:             p.gender,
		SubscriptionType:   p.subscriptionType,
		WatchHours:         p.watchHours,
		LastLoginDays:      p.lastLoginDays,
		Region:             p.region,
		Device:             p.device,
		MonthlyFee:         p.monthlyFee,
		PaymentMethod:      p.paymentMethod,
		NumberOfProfiles:   p.numberOfProfiles,
		AvgWatchTimePerDay: p.avgWatchTimePerDay,
		FavoriteGenre:      p.favoriteGenre,
	}
}

func (p SubscriberProfile) Age() int                    { return p.age }
func (p SubscriberProfile) Gender() string              { return p.gender }
func (p SubscriberProfile) SubscriptionType() string    { return p.subscriptionType }
func (p SubscriberProfile) WatchHours() float64         { return p.watchHours }
func (p SubscriberProfile) LastLoginDays() int          { return p.lastLoginDays }
func (p SubscriberProfile) Region() string              { return p.region }
func (p SubscriberProfile) Device() string              { return p.device }
func (p SubscriberProfile) MonthlyFee() decimal.Decimal { return p.monthlyFee }
func (p SubscriberProfile) PaymentMethod() string       { return p.paymentMethod }
func (p SubscriberProfile) NumberOfProfiles() int       { return p.numberOfProfiles }
func (p SubscriberProfile) AvgWatchTimePerDay() float64 { return p.avgWatchTimePerDay }
func (p SubscriberProfile) FavoriteGenre() string       { return p.favoriteGenre }
