package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	up := mustReadSQL("0002_create_users_and_results.up.sql")
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				_, err := tx.ExecContext(ctx, up)
				return err
			})
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS quiz_results; DROP TABLE IF EXISTS users`)
			return err
		},
	)
}
