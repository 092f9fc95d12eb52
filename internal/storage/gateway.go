package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/internal/models"
	"github.com/jacobmartinez3d/log2sql/pkg/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Filter maps column names to the values a row must hold.
type Filter map[string]any

// Gateway owns the connection to the relational store and exposes generic
// record operations plus the typed queries the services need.
type Gateway struct {
	db      *gorm.DB
	dialect Dialect
	logger  logging.Logger
}

// schema lists every table the gateway manages, parents first.
var schema = []any{
	&models.User{},
	&models.LoggingLevel{},
	&models.LoggingEvent{},
}

// Connect opens the configured store, creating the data directory, database
// and tables when they do not exist yet.
func Connect(ctx context.Context, cfg config.Database, logger logging.Logger) (*Gateway, error) {
	dialect, err := ParseDialect(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if dsn == "" {
		if err := dialect.bootstrap(ctx, cfg, logger); err != nil {
			return nil, err
		}
		dsn = dialect.DSN(cfg, cfg.Name)
	}

	db, err := gorm.Open(dialect.open(dsn), &gorm.Config{Logger: newGormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	if dialect == DialectSQLite {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetConnMaxLifetime(60 * time.Minute)
	}

	g := NewGateway(db, dialect, logger)
	if err := g.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := g.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Info("database connected",
		zap.String("dialect", dialect.String()),
		zap.String("database", cfg.Name))
	return g, nil
}

// NewGateway wires an already opened gorm handle.
func NewGateway(db *gorm.DB, dialect Dialect, logger logging.Logger) *Gateway {
	return &Gateway{db: db, dialect: dialect, logger: logger.With(zap.String("component", "storage"))}
}

// Dialect reports which store the gateway talks to.
func (g *Gateway) Dialect() Dialect {
	return g.dialect
}

// Migrate creates all tables that do not exist yet. Safe to call repeatedly.
func (g *Gateway) Migrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(schema...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	g.logger.Debug("tables ensured", zap.Int("count", len(schema)))
	return nil
}

// DropAll drops every managed table, children first.
func (g *Gateway) DropAll(ctx context.Context) error {
	migrator := g.db.WithContext(ctx).Migrator()
	for i := len(schema) - 1; i >= 0; i-- {
		if err := migrator.DropTable(schema[i]); err != nil {
			return fmt.Errorf("drop %s: %w", tableName(schema[i]), err)
		}
	}
	g.logger.Warn("dropped all tables")
	return nil
}

// Ping checks that the store is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("get sql handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (g *Gateway) Close() error {
	if err := closeDB(g.db); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// Create inserts record, a pointer to a model, and fills its primary key.
func (g *Gateway) Create(ctx context.Context, record any) error {
	if err := g.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create %s: %w", tableName(record), err)
	}
	return nil
}

// Delete removes record by primary key.
func (g *Gateway) Delete(ctx context.Context, record any) error {
	if err := g.db.WithContext(ctx).Delete(record).Error; err != nil {
		return fmt.Errorf("delete %s: %w", tableName(record), err)
	}
	return nil
}

// Query starts a filtered query over the table of model.
func (g *Gateway) Query(ctx context.Context, model any, filter Filter) *Query {
	tx := g.db.WithContext(ctx).Model(model)
	if len(filter) > 0 {
		tx = tx.Where(map[string]any(filter))
	}
	return &Query{tx: tx, table: tableName(model)}
}

// Query is a reusable handle over a filtered table.
type Query struct {
	tx    *gorm.DB
	table string
}

// First loads the matching row with the lowest id into dest and reports
// whether one existed.
func (q *Query) First(dest any) (bool, error) {
	res := q.tx.Session(&gorm.Session{}).Order("id").Limit(1).Find(dest)
	if res.Error != nil {
		return false, fmt.Errorf("query %s: %w", q.table, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Find loads every matching row into dest, a pointer to a slice.
func (q *Query) Find(dest any) error {
	if err := q.tx.Session(&gorm.Session{}).Order("id").Find(dest).Error; err != nil {
		return fmt.Errorf("query %s: %w", q.table, err)
	}
	return nil
}

// Count returns the number of matching rows.
func (q *Query) Count() (int64, error) {
	var n int64
	if err := q.tx.Session(&gorm.Session{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", q.table, err)
	}
	return n, nil
}

func tableName(model any) string {
	if t, ok := model.(interface{ TableName() string }); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", model)
}
