package database

import (
	"context"
	"database/sql"
	"fmt"
)

// VerifyCollections は設定されたコレクション（テーブル）が存在することを確認する。
// マイグレーションが作成するのは既定名のテーブルのみのため、
// 別名を設定した場合は事前にテーブルを用意しておく必要がある。
func VerifyCollections(ctx context.Context, db *sql.DB, names ...string) error {
	var missing []string
	for _, name := range names {
		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = current_schema() AND table_name = $1
			)`, name,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to look up collection %q: %w", name, err)
		}
		if !exists {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("collections do not exist: %v (run the migrate command or create them manually)", missing)
	}
	return nil
}
