package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/shinyyama/shopping-items/internal/config"
	"github.com/shinyyama/shopping-items/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func BuildDSN(cfg *config.Config) string {
	mc := mysqldrv.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Params = map[string]string{"charset": "utf8mb4"}
	mc.Net, mc.Addr = splitAddr(cfg)
	return mc.FormatDSN()
}

// splitAddr resolves DB_HOST into a network and address pair.
func splitAddr(cfg *config.Config) (string, string) {
	host := strings.TrimSpace(cfg.DBHost)
	switch {
	case cfg.InstanceConnectionName != "":
		// Prefer Cloud SQL unix socket when INSTANCE_CONNECTION_NAME is provided.
		return "unix", "/cloudsql/" + cfg.InstanceConnectionName
	case strings.HasPrefix(host, "tcp(") && strings.HasSuffix(host, ")"):
		return "tcp", strings.TrimSuffix(strings.TrimPrefix(host, "tcp("), ")")
	case strings.HasPrefix(host, "unix(") && strings.HasSuffix(host, ")"):
		return "unix", strings.TrimSuffix(strings.TrimPrefix(host, "unix("), ")")
	case strings.HasPrefix(host, "/"):
		return "unix", host
	default:
		return "tcp", fmt.Sprintf("%s:%s", host, cfg.DBPort)
	}
}

// Now is the store clock. MySQL keeps datetime(3), so timestamps are cut to
// milliseconds before they are written and handed back to callers.
func Now() time.Time {
	return time.Now().Local().Truncate(time.Millisecond)
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(LogLevel(cfg.DBLogLevel)),
		NowFunc:     Now,
	}
	switch cfg.DBDriver {
	case config.DriverSQLite:
		return OpenSQLite(cfg.SQLitePath, gcfg)
	case config.DriverMySQL:
		return openMySQL(BuildDSN(cfg), gcfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

func openMySQL(dsn string, gcfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)

	return db, nil
}

// OpenSQLite opens a SQLite database file. SQLite serializes writers, so the
// pool is pinned to one connection; this also keeps ":memory:" databases
// from splitting across connections.
func OpenSQLite(path string, gcfg *gorm.Config) (*gorm.DB, error) {
	if gcfg == nil {
		gcfg = &gorm.Config{Logger: logger.Default.LogMode(logger.Warn), NowFunc: Now}
	}
	db, err := gorm.Open(sqlite.Open(path), gcfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.ShoppingItem{}); err != nil {
		return err
	}
	if db.Dialector.Name() == "mysql" {
		// Category lookups are exact matches; the default MySQL collation folds case.
		return db.Exec("ALTER TABLE shopping_items MODIFY category VARCHAR(50) NOT NULL COLLATE utf8mb4_bin").Error
	}
	return nil
}

func LogLevel(s string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
