package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacobmartinez3d/log2sql/internal/models"
	"gorm.io/gorm"
)

// CreateEvent inserts event. Its user and level must already exist.
func (g *Gateway) CreateEvent(ctx context.Context, event *models.LoggingEvent) error {
	if err := g.db.WithContext(ctx).Omit("User", "LoggingLevel").Create(event).Error; err != nil {
		return fmt.Errorf("create %s: %w", event.TableName(), err)
	}
	return nil
}

// GetEvent fetches one event with its user and level, or nil when absent.
func (g *Gateway) GetEvent(ctx context.Context, id uint) (*models.LoggingEvent, error) {
	var event models.LoggingEvent
	res := g.db.WithContext(ctx).
		Preload("User").
		Preload("LoggingLevel").
		Where("id = ?", id).
		Limit(1).
		Find(&event)
	if res.Error != nil {
		return nil, fmt.Errorf("get logging event: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &event, nil
}

// ListEvents retrieves events with filtering and pagination, newest first.
// Returns the page of events and the total count for pagination.
func (g *Gateway) ListEvents(ctx context.Context, query models.ListEventsQuery) ([]models.LoggingEvent, int64, error) {
	query.Normalize()
	base := g.filterEvents(g.db.WithContext(ctx).Model(&models.LoggingEvent{}), query)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count logging events: %w", err)
	}

	events := []models.LoggingEvent{}
	err := base.Session(&gorm.Session{}).
		Preload("User").
		Preload("LoggingLevel").
		Order("created DESC").
		Order("id DESC").
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list logging events: %w", err)
	}

	return events, total, nil
}

func (g *Gateway) filterEvents(tx *gorm.DB, query models.ListEventsQuery) *gorm.DB {
	if query.User != "" {
		tx = tx.Where("user_id IN (?)",
			g.db.Model(&models.User{}).Select("id").Where("alias = ?", query.User))
	}
	if query.Level != "" {
		tx = tx.Where("logging_level_id IN (?)",
			g.db.Model(&models.LoggingLevel{}).Select("id").Where("name = ?", query.Level))
	}
	if query.LevelNum != nil {
		tx = tx.Where("logging_level_id IN (?)",
			g.db.Model(&models.LoggingLevel{}).Select("id").Where("num = ?", *query.LevelNum))
	}
	if query.Search != "" {
		tx = tx.Where("msg LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(query.Search)+"%")
	}
	if query.CreatedAfter != nil {
		tx = tx.Where("created >= ?", *query.CreatedAfter)
	}
	if query.CreatedBefore != nil {
		tx = tx.Where("created < ?", *query.CreatedBefore)
	}
	return tx
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// DeleteEvents removes events by id in a single batch and returns how many
// rows were deleted.
func (g *Gateway) DeleteEvents(ctx context.Context, ids []uint) (int64, error) {
	instructions := make([]Instruction, 0, len(ids))
	for _, id := range ids {
		instructions = append(instructions, Instruction{
			Operation: OperationDelete,
			Model:     &models.LoggingEvent{ID: id},
		})
	}

	results, err := g.Batch(ctx, instructions)
	if err != nil {
		return 0, fmt.Errorf("delete logging events: %w", err)
	}

	var deleted int64
	for _, r := range results {
		deleted += r.RowsAffected
	}
	return deleted, nil
}

// DeleteEventsCreatedBefore removes events whose created timestamp (unix
// seconds) is older than cutoff.
func (g *Gateway) DeleteEventsCreatedBefore(ctx context.Context, cutoff float64) (int64, error) {
	res := g.db.WithContext(ctx).Where("created < ?", cutoff).Delete(&models.LoggingEvent{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune logging events: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Stats counts rows per table and events per level name.
func (g *Gateway) Stats(ctx context.Context) (models.Stats, error) {
	var stats models.Stats
	var err error

	if stats.Users, err = g.Query(ctx, &models.User{}, nil).Count(); err != nil {
		return models.Stats{}, err
	}
	if stats.Levels, err = g.Query(ctx, &models.LoggingLevel{}, nil).Count(); err != nil {
		return models.Stats{}, err
	}
	if stats.Events, err = g.Query(ctx, &models.LoggingEvent{}, nil).Count(); err != nil {
		return models.Stats{}, err
	}

	var counts []models.LevelCount
	err = g.db.WithContext(ctx).
		Model(&models.LoggingEvent{}).
		Select("logging_level_id, count(*) AS count").
		Group("logging_level_id").
		Scan(&counts).Error
	if err != nil {
		return models.Stats{}, fmt.Errorf("count events by level: %w", err)
	}

	levels, err := g.ListLevels(ctx)
	if err != nil {
		return models.Stats{}, err
	}
	names := make(map[uint]string, len(levels))
	for _, l := range levels {
		names[l.ID] = l.Name
	}

	stats.EventsByLevel = make(map[string]int64, len(counts))
	for _, c := range counts {
		stats.EventsByLevel[names[c.LoggingLevelID]] += c.Count
	}
	return stats, nil
}
