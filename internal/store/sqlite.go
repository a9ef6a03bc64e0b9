package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"options-advisor/internal/errors"
	"options-advisor/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Concurrent recommend runs share one handle
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db, now: time.Now}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS recommendations (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		signal TEXT NOT NULL,
		spot REAL NOT NULL,
		sigma REAL NOT NULL,
		option_type TEXT NOT NULL,
		strike REAL NOT NULL,
		expiry TEXT,
		expiry_days REAL NOT NULL,
		premium REAL NOT NULL,
		delta REAL NOT NULL,
		gamma REAL NOT NULL,
		theta REAL NOT NULL,
		vega REAL NOT NULL,
		d1 REAL NOT NULL,
		d2 REAL NOT NULL,
		source TEXT NOT NULL,
		rationale TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_recommendations_symbol ON recommendations(symbol);
	CREATE INDEX IF NOT EXISTS idx_recommendations_created ON recommendations(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRecommendation journals a recommendation, assigning ID and CreatedAt
// when they are unset.
func (s *SQLiteStore) SaveRecommendation(ctx context.Context, rec *models.Recommendation) error {
	if rec == nil {
		return errors.NewValidationError("recommendation", nil, "must not be nil")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	var expiry sql.NullString
	if rec.Expiry != nil {
		expiry = sql.NullString{String: *rec.Expiry, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO recommendations (
			id, created_at, symbol, signal, spot, sigma, option_type, strike, expiry, expiry_days,
			premium, delta, gamma, theta, vega, d1, d2, source, rationale
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt.UTC(), rec.Symbol, string(rec.Signal), rec.Spot, rec.Sigma,
		string(rec.OptionType), rec.Strike, expiry, rec.ExpiryDays, rec.PremiumApprox,
		rec.Greeks.Delta, rec.Greeks.Gamma, rec.Greeks.ThetaPerDay, rec.Greeks.VegaPer1Pct,
		rec.Greeks.D1, rec.Greeks.D2, string(rec.Source), rec.Rationale)
	if err != nil {
		return errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("saving recommendation: %v", err))
	}
	return nil
}

const recommendationColumns = `id, created_at, symbol, signal, spot, sigma, option_type, strike, expiry,
	expiry_days, premium, delta, gamma, theta, vega, d1, d2, source, rationale`

// GetRecommendations retrieves journaled recommendations, newest first.
func (s *SQLiteStore) GetRecommendations(ctx context.Context, filter RecommendationFilter) ([]models.Recommendation, error) {
	query := "SELECT " + recommendationColumns + " FROM recommendations WHERE 1=1"
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, strings.ToUpper(filter.Symbol))
	}
	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, string(filter.Source))
	}
	if !filter.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, fmt.Sprintf("querying recommendations: %v", err))
	}
	defer rows.Close()

	var recs []models.Recommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}

	return recs, rows.Err()
}

// GetRecommendationByID returns ErrDataNotFound for an unknown id.
func (s *SQLiteStore) GetRecommendationByID(ctx context.Context, id string) (*models.Recommendation, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+recommendationColumns+" FROM recommendations WHERE id = ?", id)
	rec, err := scanRecommendation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrDataNotFound, "recommendation %s", id)
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecommendation(row scanner) (*models.Recommendation, error) {
	var (
		rec                     models.Recommendation
		signal, optType, source string
		expiry                  sql.NullString
		rationale               sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.Symbol, &signal, &rec.Spot, &rec.Sigma,
		&optType, &rec.Strike, &expiry, &rec.ExpiryDays, &rec.PremiumApprox,
		&rec.Greeks.Delta, &rec.Greeks.Gamma, &rec.Greeks.ThetaPerDay, &rec.Greeks.VegaPer1Pct,
		&rec.Greeks.D1, &rec.Greeks.D2, &source, &rationale)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan recommendation: %w", err)
	}

	rec.Signal = models.Signal(signal)
	rec.OptionType = models.OptionType(optType)
	rec.Source = models.RecommendationSource(source)
	rec.Rationale = rationale.String
	if expiry.Valid {
		e := expiry.String
		rec.Expiry = &e
	}
	return &rec, nil
}
