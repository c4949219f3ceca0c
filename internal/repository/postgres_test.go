package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"urbannest/internal/model"
)

var recordColumns = []string{
	"id", "model_kind", "input", "latitude", "longitude", "geohash", "geocode_outcome",
	"prediction", "features", "feedback", "actual_price", "created_at",
}

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepositoryFromDB(sqlx.NewDb(db, "sqlmock")), mock
}

func sampleRecord(id string) *model.PredictionRecord {
	return &model.PredictionRecord{
		ID:             id,
		ModelKind:      "xgboost",
		Input:          model.JSONMap{"bhk": 2, "area": 1000},
		Latitude:       22.5043,
		Longitude:      88.3621,
		Geohash:        "tun5c2z",
		GeocodeOutcome: "resolved",
		Prediction:     45.23,
		Features:       pgvector.NewVector([]float32{2, 1000, 0.75}),
	}
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE EXTENSION IF NOT EXISTS vector")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`vector\(27\) NOT NULL`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("predictions_created_at_idx").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("predictions_geohash_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background(), 27))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_Unsized(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("CREATE EXTENSION").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`features +vector NOT NULL`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background(), 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema_ExtensionMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("CREATE EXTENSION").WillReturnError(errors.New(`extension "vector" is not available`))

	assert.Error(t, repo.EnsureSchema(context.Background(), 27))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogPrediction(t *testing.T) {
	repo, mock := newMockRepo(t)
	rec := sampleRecord("0b7c1e8e-7d4e-4a8b-9a53-0d2f3c1f8a11")

	mock.ExpectExec("INSERT INTO predictions").
		WithArgs(rec.ID, "xgboost", sqlmock.AnyArg(), 22.5043, 88.3621, "tun5c2z", "resolved", 45.23, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.LogPrediction(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogPrediction_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO predictions").WillReturnError(sql.ErrConnDone)

	err := repo.LogPrediction(context.Background(), sampleRecord("id"))
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func insertArgs(id string) []driver.Value {
	args := []driver.Value{id}
	for i := 0; i < 8; i++ {
		args = append(args, sqlmock.AnyArg())
	}
	return args
}

func TestLogPredictions_PartialFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	recs := []*model.PredictionRecord{sampleRecord("a"), sampleRecord("b"), sampleRecord("c")}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO predictions")

	mock.ExpectExec("^SAVEPOINT prediction_row$").WillReturnResult(sqlmock.NewResult(0, 0))
	prep.ExpectExec().WithArgs(insertArgs("a")...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("^RELEASE SAVEPOINT prediction_row$").WillReturnResult(sqlmock.NewResult(0, 0))

	// The duplicate is undone to its savepoint so the transaction stays usable
	mock.ExpectExec("^SAVEPOINT prediction_row$").WillReturnResult(sqlmock.NewResult(0, 0))
	prep.ExpectExec().WithArgs(insertArgs("b")...).WillReturnError(errors.New("duplicate key"))
	mock.ExpectExec("^ROLLBACK TO SAVEPOINT prediction_row$").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec("^SAVEPOINT prediction_row$").WillReturnResult(sqlmock.NewResult(0, 0))
	prep.ExpectExec().WithArgs(insertArgs("c")...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("^RELEASE SAVEPOINT prediction_row$").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectCommit()

	n, failures := repo.LogPredictions(context.Background(), recs)
	assert.Equal(t, 2, n)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "prediction b")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogPredictions_CommitFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO predictions")
	mock.ExpectExec("^SAVEPOINT prediction_row$").WillReturnResult(sqlmock.NewResult(0, 0))
	prep.ExpectExec().WithArgs(insertArgs("a")...).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("^RELEASE SAVEPOINT prediction_row$").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit().WillReturnError(errors.New("pq: current transaction is aborted"))

	n, failures := repo.LogPredictions(context.Background(), []*model.PredictionRecord{sampleRecord("a")})
	assert.Equal(t, 0, n)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], "failed to commit transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPrediction_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM predictions").WithArgs("missing").WillReturnRows(sqlmock.NewRows(recordColumns))

	_, err := repo.GetPrediction(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRecentPredictions(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows(recordColumns).
		AddRow("a", "xgboost", []byte(`{"bhk":2}`), 22.5, 88.3, "tun5c2z", "resolved", 45.2, "[2,1000,0.75]", nil, nil, created).
		AddRow("b", "elasticnet", []byte(`{"bhk":3}`), 22.59, 88.40, "tunk0bz", "fallback", 61.0, "[3,1400,0.5]", "too_high", 55.0, created.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT $1")).WithArgs(20).WillReturnRows(rows)

	recs, err := repo.RecentPredictions(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "a", recs[0].ID)
	assert.Equal(t, float64(2), recs[0].Input["bhk"])
	assert.Equal(t, []float32{2, 1000, 0.75}, recs[0].Features.Slice())
	assert.Nil(t, recs[0].Feedback)
	require.NotNil(t, recs[1].Feedback)
	assert.Equal(t, "too_high", *recs[1].Feedback)
	require.NotNil(t, recs[1].ActualPrice)
	assert.Equal(t, 55.0, *recs[1].ActualPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSimilarPredictions(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).WithArgs("ref").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("ref", "random_forest", []byte(`{}`), 22.5, 88.3, "tun5c2z", "resolved", 45.2, "[2,1000]", nil, nil, created))

	similar := sqlmock.NewRows(append(append([]string{}, recordColumns...), "distance")).
		AddRow("near", "random_forest", []byte(`{}`), 22.5, 88.3, "tun5c2z", "resolved", 47.0, "[2,1010]", nil, nil, created, 10.0)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY features <-> $1")).
		WithArgs(sqlmock.AnyArg(), "random_forest", "ref", 5).
		WillReturnRows(similar)

	recs, err := repo.SimilarPredictions(context.Background(), "ref", 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "near", recs[0].ID)
	require.NotNil(t, recs[0].Distance)
	assert.Equal(t, 10.0, *recs[0].Distance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSimilarPredictions_UnknownReference(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM predictions").WithArgs("ghost").WillReturnRows(sqlmock.NewRows(recordColumns))

	_, err := repo.SimilarPredictions(context.Background(), "ghost", 5)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLogFeedback(t *testing.T) {
	price := 52.5

	t.Run("updated", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE predictions").WithArgs("a", "too_low", 52.5).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.LogFeedback(context.Background(), "a", "too_low", &price))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown prediction", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE predictions").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.LogFeedback(context.Background(), "ghost", "accurate", nil)
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}
