package events

import (
	"context"

	"github.com/jacobmartinez3d/log2sql/internal/models"
)

// EventStore defines persistence required by the event Service.
// Find methods return nil, nil when no row matches.
type EventStore interface {
	FindUserByAlias(ctx context.Context, alias string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	FindLevelByNum(ctx context.Context, num int) (*models.LoggingLevel, error)
	CreateLevel(ctx context.Context, level *models.LoggingLevel) error
	CreateEvent(ctx context.Context, event *models.LoggingEvent) error

	GetEvent(ctx context.Context, id uint) (*models.LoggingEvent, error)
	ListEvents(ctx context.Context, query models.ListEventsQuery) ([]models.LoggingEvent, int64, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListLevels(ctx context.Context) ([]models.LoggingLevel, error)
	DeleteEvents(ctx context.Context, ids []uint) (int64, error)
	DeleteEventsCreatedBefore(ctx context.Context, cutoff float64) (int64, error)
	Stats(ctx context.Context) (models.Stats, error)
}
