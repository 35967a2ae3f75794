package models

import (
	"github.com/garimellasrinivasu/ArcadiaSalesUpdate/config"
)

// MigrateTable runs AutoMigrate for every model and seeds the defaults an
// empty database needs (option values, the default user accounts).
func MigrateTable() {
	db := config.GetDB()
	logger := config.GetLogger()

	err := db.AutoMigrate(
		&User{},
		&Sale{},
		&Payment{},
		&SpgOption{},
		&SaleTypeOption{},
		&SalesPerson{},
	)
	if err != nil {
		config.LogError(logger, "models", "MigrateTable", "auto migrate", nil, err)
		return
	}

	if err := SeedOptions(); err != nil {
		config.LogError(logger, "models", "MigrateTable", "seed options", nil, err)
	}
	if err := SeedUsers(); err != nil {
		config.LogError(logger, "models", "MigrateTable", "seed users", nil, err)
	}
}
