// README: Quote store backed by PostgreSQL.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"farmlink/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

type storedLineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

func (s *Store) SaveQuote(ctx context.Context, q *Quote) error {
	items := make([]storedLineItem, 0, len(q.Fare.Breakdown))
	for _, it := range q.Fare.Breakdown {
		items = append(items, storedLineItem{Description: it.Description, Amount: it.Amount})
	}
	breakdown, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO fare_quotes (
			id, user_id, ride_class,
			pickup_lat, pickup_lng, destination_lat, destination_lng,
			base_fare, distance_fare, time_fare, surge_fare, service_fee, taxes, total_estimate,
			surge_multiplier, distance_km, duration_minutes, breakdown, currency, created_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20
		)`,
		string(q.ID), string(q.UserID), string(q.Fare.RideClass),
		q.Pickup.Lat, q.Pickup.Lng, q.Destination.Lat, q.Destination.Lng,
		q.Fare.BaseFare.String(), q.Fare.DistanceFare.String(), q.Fare.TimeFare.String(),
		q.Fare.SurgeFare.String(), q.Fare.ServiceFee.String(), q.Fare.Taxes.String(), q.Fare.TotalEstimate.String(),
		q.Fare.SurgeMultiplier, q.Fare.EstimatedDistanceKm, q.Fare.EstimatedDurationMinutes,
		breakdown, q.Currency, q.CreatedAt,
	)
	return err
}

func (s *Store) GetQuote(ctx context.Context, id types.ID) (*Quote, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, ride_class,
		       pickup_lat, pickup_lng, destination_lat, destination_lng,
		       base_fare::text, distance_fare::text, time_fare::text, surge_fare::text,
		       service_fee::text, taxes::text, total_estimate::text,
		       surge_multiplier, distance_km, duration_minutes, breakdown, currency, created_at
		FROM fare_quotes
		WHERE id = $1`, string(id),
	)

	var q Quote
	var rideClass string
	var amounts [7]string
	var breakdown []byte
	err := row.Scan(
		&q.ID, &q.UserID, &rideClass,
		&q.Pickup.Lat, &q.Pickup.Lng, &q.Destination.Lat, &q.Destination.Lng,
		&amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5], &amounts[6],
		&q.Fare.SurgeMultiplier, &q.Fare.EstimatedDistanceKm, &q.Fare.EstimatedDurationMinutes,
		&breakdown, &q.Currency, &q.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	parsed := make([]decimal.Decimal, len(amounts))
	for i, a := range amounts {
		d, err := decimal.NewFromString(a)
		if err != nil {
			return nil, fmt.Errorf("parse amount %q: %w", a, err)
		}
		parsed[i] = d
	}
	q.Fare.RideClass = RideClass(rideClass)
	q.Fare.BaseFare, q.Fare.DistanceFare, q.Fare.TimeFare = parsed[0], parsed[1], parsed[2]
	q.Fare.SurgeFare, q.Fare.ServiceFee, q.Fare.Taxes = parsed[3], parsed[4], parsed[5]
	q.Fare.TotalEstimate = parsed[6]

	var items []storedLineItem
	if err := json.Unmarshal(breakdown, &items); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	for _, it := range items {
		q.Fare.Breakdown = append(q.Fare.Breakdown, LineItem{Description: it.Description, Amount: it.Amount})
	}
	return &q, nil
}
