package mysql

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bangcorrupt/freesound/models"
	"github.com/bangcorrupt/freesound/settings"
)

// db is the shared connection pool. gorm.DB is safe for concurrent use.
var db *gorm.DB

// Init opens the MySQL connection pool and verifies it with a bounded ping.
func Init(cfg *settings.MysqlConfig) (err error) {
	if cfg == nil {
		return fmt.Errorf("mysql.Init received nil config")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DbName,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	gormConfig := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
		PrepareStmt:                              true,
	}

	db, err = gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return fmt.Errorf("connect to mysql failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB failed: %w", err)
	}

	if err = sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mysql failed: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	// Keep idle connections below MySQL's wait_timeout so the server never
	// closes them from under us.
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)

	zap.L().Info("init mysql success", zap.String("host", cfg.Host))
	return nil
}

// AutoMigrate creates or updates the forum schema.
func AutoMigrate() error {
	return db.AutoMigrate(
		&models.User{},
		&models.Forum{},
		&models.Thread{},
		&models.Post{},
		&models.Subscription{},
	)
}

// Close releases the connection pool.
func Close() {
	if db != nil {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}
}

// GetDB exposes the connection for callers that need to run their own
// transactions.
func GetDB() *gorm.DB {
	return db
}

// SetDB injects an existing connection. Tests use this to run the package
// against an in-memory sqlite database.
func SetDB(conn *gorm.DB) {
	db = conn
}
