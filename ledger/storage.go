package ledger

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// openStore opens the embedded columnar store backing one Ledger instance.
// Each deal gets its own named in-memory database so concurrent analyses
// never share rows; "cache=shared" keeps the single connection pool gorm
// opens from seeing a fresh empty database on every query.
func openStore(dealID string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:ledger-%s?mode=memory&cache=shared", dealID)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// sqlite holds a single writer; a shared in-memory database must be
	// accessed through one connection or concurrent readers observe an
	// empty database.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&row{}); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger schema: %w", err)
	}

	return db, nil
}
