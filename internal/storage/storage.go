package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/org-hierarchy-api/internal/config"
	"github.com/org-hierarchy-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Gateway - единственная точка доступа ядра к реляционному хранилищу.
// Каждая единица работы выполняется в отдельной транзакции с заданным уровнем изоляции.
type Gateway struct {
	db        *gorm.DB
	txOptions *sql.TxOptions
}

// NewGateway создаёт шлюз поверх открытого соединения.
// Пустой isolation оставляет уровень изоляции по умолчанию для драйвера.
func NewGateway(db *gorm.DB, isolation string) *Gateway {
	g := &Gateway{db: db}
	if level, ok := isolationLevel(isolation); ok {
		g.txOptions = &sql.TxOptions{Isolation: level}
	}
	return g
}

// NewGatewayForConfig выбирает уровень изоляции по конфигурации. SQLite сериализует запись сама, для неё уровень не задаётся.
func NewGatewayForConfig(db *gorm.DB, cfg config.DatabaseConfig) *Gateway {
	if cfg.Driver == "sqlite" {
		return NewGateway(db, "")
	}
	return NewGateway(db, cfg.TxIsolation)
}

// Transact выполняет fn в одной транзакции: фиксация только если fn вернула nil.
// Ошибки драйвера переводятся в бизнес-ошибки, где это возможно.
func (g *Gateway) Transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var opts []*sql.TxOptions
	if g.txOptions != nil {
		opts = append(opts, g.txOptions)
	}
	return TranslateError(g.db.WithContext(ctx).Transaction(fn, opts...))
}

// Ping проверяет доступность БД
func (g *Gateway) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close закрывает пул соединений
func (g *Gateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Open подключается к БД согласно конфигурации
func Open(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if cfg.Driver == "sqlite" {
		return OpenSQLite(cfg.SQLitePath)
	}
	return openPostgres(cfg, logger)
}

func openPostgres(cfg config.DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	attempts := max(cfg.ConnectAttempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				return nil, fmt.Errorf("failed to get sql.DB: %w", dbErr)
			}
			if err = sqlDB.Ping(); err == nil {
				configurePool(sqlDB, cfg)
				return db, nil
			}
		}
		logger.Warn("database is not ready",
			slog.Int("attempt", attempt),
			slog.Any("error", err),
		)
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
}

func configurePool(sqlDB *sql.DB, cfg config.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

// OpenSQLite открывает SQLite с включёнными внешними ключами.
// Пул ограничен одним соединением: in-memory база живёт ровно столько, сколько её соединение.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path + "?_foreign_keys=on"
	if path == ":memory:" {
		dsn = "file::memory:?_foreign_keys=on"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// AutoMigrate создаёт схему средствами GORM. Используется для SQLite, где SQL-миграции под PostgreSQL неприменимы.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Department{}, &domain.Employee{}); err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return nil
}

func isolationLevel(name string) (sql.IsolationLevel, bool) {
	switch name {
	case "read_committed":
		return sql.LevelReadCommitted, true
	case "repeatable_read":
		return sql.LevelRepeatableRead, true
	case "serializable":
		return sql.LevelSerializable, true
	default:
		return sql.LevelDefault, false
	}
}
