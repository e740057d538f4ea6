package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/gallery/internal/model"
)

// PostgresCredentialRepo はPostgreSQLを使用した認証情報リポジトリ。
type PostgresCredentialRepo struct {
	db    *sql.DB
	table string
}

// NewPostgresCredentialRepo はPostgresCredentialRepoを生成する。
// tableは設定値のコレクション名で、SQL識別子としてクォートして使用する。
func NewPostgresCredentialRepo(db *sql.DB, table string) *PostgresCredentialRepo {
	return &PostgresCredentialRepo{db: db, table: pq.QuoteIdentifier(table)}
}

// FindByUsername は指定ユーザー名の認証情報を取得する。見つからない場合はnilを返す。
func (r *PostgresCredentialRepo) FindByUsername(ctx context.Context, username string) (*model.Credential, error) {
	cred := &model.Credential{}
	err := r.db.QueryRowContext(ctx,
		`SELECT username, password_hash, created_at FROM `+r.table+` WHERE username = $1`,
		username,
	).Scan(&cred.Username, &cred.PasswordHash, &cred.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	return cred, nil
}

// InsertUnique は認証情報を挿入する。
// 主キー制約違反の場合はErrDuplicateKeyを返す。
func (r *PostgresCredentialRepo) InsertUnique(ctx context.Context, cred *model.Credential) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO `+r.table+` (username, password_hash, created_at) VALUES ($1, $2, $3)`,
		cred.Username, cred.PasswordHash, cred.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}
	return nil
}

// compile-time interface check
var _ CredentialRepository = (*PostgresCredentialRepo)(nil)
