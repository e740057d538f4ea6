package image

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// PublicPathPrefix はアップロード画像を配信するURLパスの接頭辞。
const PublicPathPrefix = "/uploads/"

// FileStorage は画像ファイルの保存先を抽象化するインターフェース。
type FileStorage interface {
	// Save はデータをランダムなファイル名で保存し、ファイル名を返す。
	Save(ctx context.Context, data []byte, ext string) (string, error)
	// Remove は保存済みファイルを削除する。存在しない場合はエラーにしない。
	Remove(ctx context.Context, filename string) error
}

// DiskStorage はローカルディレクトリに画像を保存するFileStorage実装。
type DiskStorage struct {
	dir string
}

// NewDiskStorage は保存先ディレクトリを作成してDiskStorageを返す。
func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStorage{dir: dir}, nil
}

// Dir は保存先ディレクトリを返す。
func (s *DiskStorage) Dir() string {
	return s.dir
}

// Save はUUIDのファイル名でデータを書き込む。既存ファイルは上書きしない。
func (s *DiskStorage) Save(ctx context.Context, data []byte, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filename := uuid.NewString() + ext
	path := filepath.Join(s.dir, filename)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	return filename, nil
}

// Remove はファイルを削除する。
func (s *DiskStorage) Remove(_ context.Context, filename string) error {
	if filename != filepath.Base(filename) {
		return fmt.Errorf("invalid image filename: %q", filename)
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}

// compile-time interface check
var _ FileStorage = (*DiskStorage)(nil)
