// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"options-advisor/internal/models"
)

// DataStore defines the interface for data persistence.
type DataStore interface {
	// Recommendations journal
	SaveRecommendation(ctx context.Context, rec *models.Recommendation) error
	GetRecommendations(ctx context.Context, filter RecommendationFilter) ([]models.Recommendation, error)
	GetRecommendationByID(ctx context.Context, id string) (*models.Recommendation, error)

	// Lifecycle
	Close() error
}

// RecommendationFilter represents filters for querying the journal.
type RecommendationFilter struct {
	Symbol string
	Source models.RecommendationSource
	Since  time.Time
	Limit  int
}
