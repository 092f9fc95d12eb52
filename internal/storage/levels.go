package storage

import (
	"context"

	"github.com/jacobmartinez3d/log2sql/internal/models"
)

// FindLevelByNum returns the first level with severity num, or nil when there is none.
func (g *Gateway) FindLevelByNum(ctx context.Context, num int) (*models.LoggingLevel, error) {
	var level models.LoggingLevel
	found, err := g.Query(ctx, &models.LoggingLevel{}, Filter{"num": num}).First(&level)
	if err != nil || !found {
		return nil, err
	}
	return &level, nil
}

// CreateLevel inserts level and assigns its id.
func (g *Gateway) CreateLevel(ctx context.Context, level *models.LoggingLevel) error {
	return g.Create(ctx, level)
}

// ListLevels returns every level ordered by id.
func (g *Gateway) ListLevels(ctx context.Context) ([]models.LoggingLevel, error) {
	levels := []models.LoggingLevel{}
	if err := g.Query(ctx, &models.LoggingLevel{}, nil).Find(&levels); err != nil {
		return nil, err
	}
	return levels, nil
}
