// Package migrations holds the bun migrations for the quiz schema.
package migrations

import (
	"embed"

	"github.com/uptrace/bun/migrate"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migrations is the ordered migration set applied by `quiz-service migrate` and on server start.
var Migrations = migrate.NewMigrations()

func mustReadSQL(name string) string {
	data, err := sqlFiles.ReadFile("sql/" + name)
	if err != nil {
		panic(err)
	}
	return string(data)
}
