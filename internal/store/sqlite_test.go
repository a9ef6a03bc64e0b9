package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-advisor/internal/errors"
	"options-advisor/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "advisor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func journalEntry(symbol string, source models.RecommendationSource, at time.Time) *models.Recommendation {
	return &models.Recommendation{
		OptionType: models.OptionTypeCE,
		Strike:     2525,
		ExpiryDays: 7,
		Source:     source,
		Symbol:     symbol,
		Signal:     models.SignalBuy,
		Spot:       2500,
		Sigma:      0.3175,
		CreatedAt:  at,
	}
}

func TestSQLiteStore_SaveAssignsIdentity(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2026, 2, 19, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	rec := journalEntry("RELIANCE", models.SourceModel, time.Time{})
	require.NoError(t, s.SaveRecommendation(context.Background(), rec))

	assert.Len(t, rec.ID, 36)
	assert.True(t, rec.CreatedAt.Equal(fixed))

	// ids are kept when supplied
	other := journalEntry("RELIANCE", models.SourceModel, fixed)
	other.ID = "fixed-id"
	require.NoError(t, s.SaveRecommendation(context.Background(), other))
	assert.Equal(t, "fixed-id", other.ID)
}

func TestSQLiteStore_SaveNil(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveRecommendation(context.Background(), nil)
	assert.ErrorIs(t, err, errors.ErrInputValidation)
}

func TestSQLiteStore_GetRecommendationsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, s.SaveRecommendation(ctx, journalEntry("RELIANCE", models.SourceModel, base)))
	require.NoError(t, s.SaveRecommendation(ctx, journalEntry("RELIANCE", models.SourceChain, base.Add(time.Hour))))
	require.NoError(t, s.SaveRecommendation(ctx, journalEntry("TCS", models.SourceChain, base.Add(2*time.Hour))))

	all, err := s.GetRecommendations(ctx, RecommendationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "TCS", all[0].Symbol, "newest first")

	bySymbol, err := s.GetRecommendations(ctx, RecommendationFilter{Symbol: "reliance"})
	require.NoError(t, err)
	assert.Len(t, bySymbol, 2)

	bySource, err := s.GetRecommendations(ctx, RecommendationFilter{Source: models.SourceChain})
	require.NoError(t, err)
	assert.Len(t, bySource, 2)

	since, err := s.GetRecommendations(ctx, RecommendationFilter{Since: base.Add(90 * time.Minute)})
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "TCS", since[0].Symbol)

	limited, err := s.GetRecommendations(ctx, RecommendationFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_GetByIDNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetRecommendationByID(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.ErrDataNotFound)
}
