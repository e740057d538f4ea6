// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/gallery/internal/model"
)

// ErrDuplicateKey は一意キー制約に違反した挿入を表す。
var ErrDuplicateKey = errors.New("duplicate key")

// CredentialRepository は認証情報の永続化インターフェース。
// 登録済みの認証情報は更新も削除もしない。
type CredentialRepository interface {
	// FindByUsername は指定ユーザー名の認証情報を取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.Credential, error)

	// InsertUnique は認証情報を挿入する。
	// 同じユーザー名が既に存在する場合はErrDuplicateKeyを返す。
	// 一意性はDBの主キー制約で保証するため、複数プロセスから同時に呼ばれても1件だけが成功する。
	InsertUnique(ctx context.Context, cred *model.Credential) error
}

// ImageRepository は画像メタデータの永続化インターフェース。
type ImageRepository interface {
	// FindByID は指定IDの画像を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Image, error)

	// List は画像一覧を作成日時の降順で返す。
	// nameFilterが空でない場合は名前の部分一致（大文字小文字を区別しない）で絞り込む。
	List(ctx context.Context, nameFilter string) ([]*model.Image, error)

	// Insert は画像を作成する。IDとCreatedAtは呼び出し側で設定する。
	Insert(ctx context.Context, image *model.Image) error

	// UpdateName は画像名のみを更新し、一致した行数を返す。
	// owner_idは更新対象に含めない。
	UpdateName(ctx context.Context, id, name string) (int64, error)
}
