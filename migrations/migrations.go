package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry consumed by cmd/migrate.
var Migrations = migrate.NewMigrations()
