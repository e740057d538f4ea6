package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hitoshi/gallery/internal/model"
)

// likeEscaper はLIKEパターンのワイルドカードをエスケープする。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresImageRepo はPostgreSQLを使用した画像リポジトリ。
type PostgresImageRepo struct {
	db    *sql.DB
	table string
}

// NewPostgresImageRepo はPostgresImageRepoを生成する。
func NewPostgresImageRepo(db *sql.DB, table string) *PostgresImageRepo {
	return &PostgresImageRepo{db: db, table: pq.QuoteIdentifier(table)}
}

// FindByID は指定IDの画像を取得する。見つからない場合はnilを返す。
func (r *PostgresImageRepo) FindByID(ctx context.Context, id string) (*model.Image, error) {
	img := &model.Image{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, src, name, owner_id, created_at FROM `+r.table+` WHERE id = $1`,
		id,
	).Scan(&img.ID, &img.Src, &img.Name, &img.OwnerID, &img.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find image by ID: %w", err)
	}

	return img, nil
}

// List は画像一覧を作成日時の降順で返す。
func (r *PostgresImageRepo) List(ctx context.Context, nameFilter string) ([]*model.Image, error) {
	query := `SELECT id, src, name, owner_id, created_at FROM ` + r.table
	var args []any

	if f := strings.TrimSpace(nameFilter); f != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, "%"+likeEscaper.Replace(f)+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	var images []*model.Image
	for rows.Next() {
		img := &model.Image{}
		if err := rows.Scan(&img.ID, &img.Src, &img.Name, &img.OwnerID, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate images: %w", err)
	}

	return images, nil
}

// Insert は画像を作成する。
func (r *PostgresImageRepo) Insert(ctx context.Context, image *model.Image) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO `+r.table+` (id, src, name, owner_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		image.ID, image.Src, image.Name, image.OwnerID, image.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert image: %w", err)
	}
	return nil
}

// UpdateName は画像名のみを更新し、一致した行数を返す。
func (r *PostgresImageRepo) UpdateName(ctx context.Context, id, name string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE `+r.table+` SET name = $1 WHERE id = $2`,
		name, id,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to update image name: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ ImageRepository = (*PostgresImageRepo)(nil)
