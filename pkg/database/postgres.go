package database

import (
	"log"
	"log/slog"
	"os"
	"time"

	"go-retail-pos/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDB opens the postgres pool behind the gorm store.
func ConnectDB(dsn string) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statements for pgbouncer transaction mode
	}), &gorm.Config{
		Logger:      newLogger,
		PrepareStmt: false,
	})
	if err != nil {
		return nil, err
	}

	// Connection Pooling Setup
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	slog.Info("database connection established")
	return db, nil
}

// Migrate creates or updates every table the POS engine owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Design{},
		&model.Item{},
		&model.StockMovement{},
		&model.Order{},
		&model.Receipt{},
		&model.ReceiptLine{},
		&model.ReceiptPayment{},
		&model.CashEntry{},
	)
}
