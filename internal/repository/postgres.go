package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"urbannest/internal/model"
)

// ErrNotFound is returned when a prediction id matches no stored record
var ErrNotFound = errors.New("prediction not found")

// PostgresRepository stores the prediction history
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository connects to PostgreSQL and applies pool limits
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing connection
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the vector extension and the predictions table when missing.
// A non-positive dimensions leaves the vector column unsized.
func (r *PostgresRepository) EnsureSchema(ctx context.Context, dimensions int) error {
	vectorType := "vector"
	if dimensions > 0 {
		vectorType = fmt.Sprintf("vector(%d)", dimensions)
	}
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS predictions (
			id              UUID PRIMARY KEY,
			model_kind      TEXT NOT NULL,
			input           JSONB NOT NULL,
			latitude        DOUBLE PRECISION NOT NULL,
			longitude       DOUBLE PRECISION NOT NULL,
			geohash         TEXT NOT NULL,
			geocode_outcome TEXT NOT NULL,
			prediction      DOUBLE PRECISION NOT NULL,
			features        %s NOT NULL,
			feedback        TEXT,
			actual_price    DOUBLE PRECISION,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, vectorType),
		`CREATE INDEX IF NOT EXISTS predictions_created_at_idx ON predictions (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS predictions_geohash_idx ON predictions (geohash)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to ensure schema")
		}
	}
	return nil
}

const insertPrediction = `
		INSERT INTO predictions (id, model_kind, input, latitude, longitude, geohash, geocode_outcome, prediction, features)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

// LogPrediction stores one prediction
func (r *PostgresRepository) LogPrediction(ctx context.Context, rec *model.PredictionRecord) error {
	_, err := r.db.ExecContext(ctx, insertPrediction,
		rec.ID, rec.ModelKind, rec.Input, rec.Latitude, rec.Longitude,
		rec.Geohash, rec.GeocodeOutcome, rec.Prediction, rec.Features,
	)
	if err != nil {
		return errors.Wrap(err, "failed to log prediction")
	}
	return nil
}

// LogPredictions stores a batch in one transaction. A failing record is
// skipped without losing the others. It returns the number of rows written
// and a message per failure; when the transaction itself fails nothing is written.
func (r *PostgresRepository) LogPredictions(ctx context.Context, recs []*model.PredictionRecord) (int, []string) {
	success := 0
	var failures []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		failures = append(failures, fmt.Sprintf("failed to start transaction: %v", err))
		return success, failures
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, insertPrediction)
	if err != nil {
		failures = append(failures, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, failures
	}
	defer stmt.Close()

	// A failed insert aborts the transaction in Postgres; each row gets a
	// savepoint so the rest of the batch can still commit.
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx, `SAVEPOINT prediction_row`); err != nil {
			failures = append(failures, fmt.Sprintf("failed to set savepoint: %v", err))
			return 0, failures
		}
		_, err := stmt.ExecContext(ctx,
			rec.ID, rec.ModelKind, rec.Input, rec.Latitude, rec.Longitude,
			rec.Geohash, rec.GeocodeOutcome, rec.Prediction, rec.Features,
		)
		if err != nil {
			failures = append(failures, fmt.Sprintf("prediction %s: %v", rec.ID, err))
			if _, rerr := tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT prediction_row`); rerr != nil {
				failures = append(failures, fmt.Sprintf("failed to roll back to savepoint: %v", rerr))
				return 0, failures
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, `RELEASE SAVEPOINT prediction_row`); err != nil {
			failures = append(failures, fmt.Sprintf("failed to release savepoint: %v", err))
			return 0, failures
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		failures = append(failures, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, failures
	}

	return success, failures
}

const selectPrediction = `
		SELECT id, model_kind, input, latitude, longitude, geohash, geocode_outcome,
			prediction, features, feedback, actual_price, created_at
		FROM predictions
	`

// GetPrediction retrieves a single prediction by id
func (r *PostgresRepository) GetPrediction(ctx context.Context, id string) (*model.PredictionRecord, error) {
	var rec model.PredictionRecord
	err := r.db.GetContext(ctx, &rec, selectPrediction+` WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get prediction")
	}
	return &rec, nil
}

// RecentPredictions returns the newest predictions first
func (r *PostgresRepository) RecentPredictions(ctx context.Context, limit int) ([]model.PredictionRecord, error) {
	recs := []model.PredictionRecord{}
	err := r.db.SelectContext(ctx, &recs, selectPrediction+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list predictions")
	}
	return recs, nil
}

// SimilarPredictions returns past predictions of the same model kind ordered
// by L2 distance between feature vectors, excluding the reference itself.
func (r *PostgresRepository) SimilarPredictions(ctx context.Context, id string, limit int) ([]model.PredictionRecord, error) {
	ref, err := r.GetPrediction(ctx, id)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, model_kind, input, latitude, longitude, geohash, geocode_outcome,
			prediction, features, feedback, actual_price, created_at,
			features <-> $1 AS distance
		FROM predictions
		WHERE model_kind = $2 AND id <> $3
		ORDER BY features <-> $1
		LIMIT $4
	`
	recs := []model.PredictionRecord{}
	if err := r.db.SelectContext(ctx, &recs, query, ref.Features, ref.ModelKind, ref.ID, limit); err != nil {
		return nil, errors.Wrap(err, "failed to search similar predictions")
	}
	return recs, nil
}

// LogFeedback attaches a user verdict and optional actual price to a prediction
func (r *PostgresRepository) LogFeedback(ctx context.Context, id, verdict string, actualPrice *float64) error {
	query := `
		UPDATE predictions
		SET feedback = $2, actual_price = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, verdict, actualPrice)
	if err != nil {
		return errors.Wrap(err, "failed to log feedback")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to log feedback")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
