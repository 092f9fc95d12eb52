package storage

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jacobmartinez3d/log2sql/internal/logging"
	"github.com/jacobmartinez3d/log2sql/pkg/config"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialect selects the relational store behind the gateway.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectMySQL
	DialectPostgres
)

// ErrUnknownDialect is returned for dialect names the gateway cannot open.
var ErrUnknownDialect = errors.New("unknown database dialect")

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ParseDialect maps a configured dialect name onto a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "mysql":
		return DialectMySQL, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
	}
}

func (d Dialect) String() string {
	switch d {
	case DialectSQLite:
		return "sqlite"
	case DialectMySQL:
		return "mysql"
	case DialectPostgres:
		return "postgres"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

func (d Dialect) defaultPort() string {
	switch d {
	case DialectMySQL:
		return "3306"
	case DialectPostgres:
		return "5432"
	default:
		return ""
	}
}

func (d Dialect) open(dsn string) gorm.Dialector {
	switch d {
	case DialectMySQL:
		return gormmysql.Open(dsn)
	case DialectPostgres:
		return postgres.Open(dsn)
	default:
		return sqlite.Open(dsn)
	}
}

// DSN composes the connection string for database on the configured server.
// For sqlite the database is a file inside the data directory.
func (d Dialect) DSN(cfg config.Database, database string) string {
	port := cfg.Port
	if port == "" {
		port = d.defaultPort()
	}

	switch d {
	case DialectMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.Username
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Hostname, port)
		mc.DBName = database
		mc.ParseTime = true
		return mc.FormatDSN()
	case DialectPostgres:
		u := url.URL{
			Scheme:   "postgres",
			Host:     net.JoinHostPort(cfg.Hostname, port),
			Path:     "/" + database,
			RawQuery: "sslmode=disable",
		}
		if cfg.Username != "" {
			u.User = url.UserPassword(cfg.Username, cfg.Password)
		}
		return u.String()
	default:
		return filepath.Join(cfg.DataDir, database)
	}
}

// bootstrap makes sure the target database exists before the gateway connects
// to it: the data directory for sqlite, CREATE DATABASE for server dialects.
func (d Dialect) bootstrap(ctx context.Context, cfg config.Database, logger logging.Logger) error {
	switch d {
	case DialectSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
		path := d.DSN(cfg, cfg.Name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logger.Warn("no database found, creating",
				zap.String("dialect", d.String()),
				zap.String("path", path))
		}
		return nil
	case DialectMySQL, DialectPostgres:
		if !identifierPattern.MatchString(cfg.Name) {
			return fmt.Errorf("invalid database name %q", cfg.Name)
		}
		return d.createDatabase(ctx, cfg, logger)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDialect, d)
	}
}

func (d Dialect) createDatabase(ctx context.Context, cfg config.Database, logger logging.Logger) error {
	serverDB := ""
	if d == DialectPostgres {
		serverDB = "postgres"
	}

	db, err := gorm.Open(d.open(d.DSN(cfg, serverDB)), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return fmt.Errorf("connect to %s server: %w", d, err)
	}
	defer closeDB(db)

	tx := db.WithContext(ctx)
	switch d {
	case DialectMySQL:
		if err := tx.Exec("CREATE DATABASE IF NOT EXISTS `" + cfg.Name + "`").Error; err != nil {
			return fmt.Errorf("create database: %w", err)
		}
	case DialectPostgres:
		var count int64
		if err := tx.Raw("SELECT count(*) FROM pg_database WHERE datname = ?", cfg.Name).Scan(&count).Error; err != nil {
			return fmt.Errorf("look up database: %w", err)
		}
		if count > 0 {
			return nil
		}
		logger.Warn("no database found, creating",
			zap.String("dialect", d.String()),
			zap.String("database", cfg.Name))
		if err := tx.Exec(`CREATE DATABASE "` + cfg.Name + `"`).Error; err != nil {
			return fmt.Errorf("create database: %w", err)
		}
	}
	return nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
