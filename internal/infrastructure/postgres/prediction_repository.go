package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/streamwise/churn/internal/domain/model"
	"github.com/streamwise/churn/internal/domain/port"
	"github.com/streamwise/churn/internal/domain/valueobject"
	pkgpostgres "github.com/streamwise/churn/pkg/postgres"
)

const selectColumns = `
	id, subscriber_ref,
	age, gender, subscription_type, watch_hours, last_login_days, region,
	device, monthly_fee, payment_method, number_of_profiles,
	avg_watch_time_per_day, favorite_genre,
	label, probability, risk_band, model_version, source,
	predicted_at, created_at`

// PredictionRepository implements port.PredictionRepository using PostgreSQL.
type PredictionRepository struct {
	pool *pgxpool.Pool
}

var _ port.PredictionRepository = (*PredictionRepository)(nil)

// NewPredictionRepository creates a new PostgreSQL-backed prediction repository.
func NewPredictionRepository(pool *pgxpool.Pool) *PredictionRepository {
	return &PredictionRepository{pool: pool}
}

// Save upserts a prediction keyed by id.
func (r *PredictionRepository) Save(ctx context.Context, p *model.ChurnPrediction) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return upsert(ctx, tx, p)
	})
}

func upsert(ctx context.Context, q pkgpostgres.Querier, p *model.ChurnPrediction) error {
	query := `
		INSERT INTO churn_predictions (` + selectColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21)
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			probability = EXCLUDED.probability,
			risk_band = EXCLUDED.risk_band,
			model_version = EXCLUDED.model_version,
			predicted_at = EXCLUDED.predicted_at
	`

	profile := p.Profile()
	_, err := q.Exec(ctx, query,
		p.ID(),
		p.SubscriberRef(),
		profile.Age(),
		profile.Gender(),
		profile.SubscriptionType(),
		profile.WatchHours(),
		profile.LastLoginDays(),
		profile.Region(),
		profile.Device(),
		profile.MonthlyFee(),
		profile.PaymentMethod(),
		profile.NumberOfProfiles(),
		profile.AvgWatchTimePerDay(),
		profile.FavoriteGenre(),
		p.Label().Int(),
		p.Probability(),
		p.RiskBand().String(),
		p.ModelVersion(),
		p.Source(),
		p.PredictedAt(),
		p.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}
	return nil
}

// FindByID retrieves a prediction by id, or (nil, nil) when absent.
func (r *PredictionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ChurnPrediction, error) {
	query := `SELECT ` + selectColumns + ` FROM churn_predictions WHERE id = $1`

	p, err := scanPrediction(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindBySubscriberRef lists a subscriber's predictions, newest first.
func (r *PredictionRepository) FindBySubscriberRef(ctx context.Context, subscriberRef string, limit, offset int) ([]*model.ChurnPrediction, error) {
	query := `SELECT ` + selectColumns + `
		FROM churn_predictions
		WHERE subscriber_ref = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, subscriberRef, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]*model.ChurnPrediction, 0)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}
	return predictions, nil
}

// Ping reports database reachability for readiness checks.
func (r *PredictionRepository) Ping(ctx context.Context) error {
	return pkgpostgres.HealthCheck(ctx, r.pool)
}

// scanPrediction works for both pgx.Row and pgx.Rows. pgx.ErrNoRows is
// returned unwrapped.
func scanPrediction(row pgx.Row) (*model.ChurnPrediction, error) {
	var (
		id            uuid.UUID
		subscriberRef string
		attrs         valueobject.ProfileAttributes
		monthlyFee    decimal.Decimal
		label         int
		probability   float64
		riskBandStr   string
		modelVersion  string
		source        string
		predictedAt   time.Time
		createdAt     time.Time
	)

	err := row.Scan(
		&id, &subscriberRef,
		&attrs.Age, &attrs.Gender, &attrs.SubscriptionType, &attrs.WatchHours,
		&attrs.LastLoginDays, &attrs.Region, &attrs.Device, &monthlyFee,
		&attrs.PaymentMethod, &attrs.NumberOfProfiles, &attrs.AvgWatchTimePerDay,
		&attrs.FavoriteGenre,
		&label, &probability, &riskBandStr, &modelVersion, &source,
		&predictedAt, &createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan prediction: %w", err)
	}
	attrs.MonthlyFee = monthlyFee

	profile, err := valueobject.NewSubscriberProfile(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild profile for %s: %w", id, err)
	}
	churnLabel, err := valueobject.LabelFromInt(label)
	if err != nil {
		return nil, fmt.Errorf("failed to parse label: %w", err)
	}
	riskBand, err := valueobject.RiskBandFromString(riskBandStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk band: %w", err)
	}

	return model.Reconstruct(
		id, subscriberRef, profile,
		churnLabel, probability, riskBand,
		modelVersion, source,
		predictedAt, createdAt,
	), nil
}
