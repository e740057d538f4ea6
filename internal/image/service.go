// Package image は画像の一覧・取得・アップロード・名前変更のドメインロジックを提供する。
package image

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/gallery/internal/auth"
	"github.com/hitoshi/gallery/internal/model"
	"github.com/hitoshi/gallery/internal/repository"
	"github.com/hitoshi/gallery/internal/security"
)

// DefaultMaxSize は画像サイズ上限の既定値（5MiB）。
const DefaultMaxSize int64 = 5 << 20

// 受け付ける画像形式と保存時の拡張子
var allowedTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// OwnershipRecorder は所有者不一致による拒否をメトリクスに記録するためのインターフェース。
type OwnershipRecorder interface {
	RecordOwnershipDenied()
}

type nopRecorder struct{}

func (nopRecorder) RecordOwnershipDenied() {}

// Service は画像リソースのサービス層。
// 変更操作は所有者チェックを通過した場合のみ実行する。
type Service struct {
	repo      repository.ImageRepository
	storage   FileStorage
	sanitizer security.NameSanitizer
	recorder  OwnershipRecorder
	maxSize   int64
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// maxSizeが0以下の場合はDefaultMaxSizeを使用する。recorderがnilの場合は記録を行わない。
func NewService(
	repo repository.ImageRepository,
	storage FileStorage,
	sanitizer security.NameSanitizer,
	recorder OwnershipRecorder,
	maxSize int64,
) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		repo:      repo,
		storage:   storage,
		sanitizer: sanitizer,
		recorder:  recorder,
		maxSize:   maxSize,
		now:       time.Now,
	}
}

// MaxSize は受け付ける画像サイズの上限を返す。
func (s *Service) MaxSize() int64 {
	return s.maxSize
}

// List は画像一覧を返す。nameFilterは前後の空白を除いて部分一致に使用する。
func (s *Service) List(ctx context.Context, nameFilter string) ([]*model.Image, error) {
	images, err := s.repo.List(ctx, strings.TrimSpace(nameFilter))
	if err != nil {
		return nil, fmt.Errorf("画像一覧の取得に失敗しました: %w", err)
	}
	return images, nil
}

// Get は指定IDの画像を返す。IDがUUID形式でない場合も見つからない扱いとする。
func (s *Service) Get(ctx context.Context, id string) (*model.Image, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, model.NewImageNotFoundError(id)
	}

	img, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("画像の取得に失敗しました: %w", err)
	}
	if img == nil {
		return nil, model.NewImageNotFoundError(id)
	}
	return img, nil
}

// Upload は画像を保存し、利用者を所有者とするメタデータを作成する。
// 画像形式は内容から判定し、PNGとJPEGのみを受け付ける。
func (s *Service) Upload(ctx context.Context, identity model.Identity, rawName string, data []byte) (*model.Image, error) {
	name, err := s.normalizeName(rawName)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, model.NewValidationError("画像ファイルが空です。")
	}
	if int64(len(data)) > s.maxSize {
		return nil, model.NewImageTooLargeError(s.maxSize)
	}

	contentType := http.DetectContentType(data)
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, model.NewUnsupportedImageError(contentType)
	}

	filename, err := s.storage.Save(ctx, data, ext)
	if err != nil {
		return nil, fmt.Errorf("画像ファイルの保存に失敗しました: %w", err)
	}

	img := &model.Image{
		ID:        uuid.NewString(),
		Src:       PublicPathPrefix + filename,
		Name:      name,
		OwnerID:   identity.Username,
		CreatedAt: s.now(),
	}
	if err := s.repo.Insert(ctx, img); err != nil {
		if rmErr := s.storage.Remove(ctx, filename); rmErr != nil {
			slog.Error("failed to remove orphaned image file",
				slog.String("file", filename),
				slog.String("error", rmErr.Error()),
			)
		}
		return nil, fmt.Errorf("画像の作成に失敗しました: %w", err)
	}

	slog.Info("image uploaded",
		slog.String("image_id", img.ID),
		slog.String("username", identity.Username),
	)
	return img, nil
}

// Rename は画像名を変更する。
// 判定順序は ID形式 → 名前の長さ → 存在 → 所有者 とし、
// 存在しない画像には所有者に関わらず見つからないエラーを返す。
func (s *Service) Rename(ctx context.Context, identity model.Identity, id, rawName string) error {
	if _, err := uuid.Parse(id); err != nil {
		return model.NewImageNotFoundError(id)
	}

	name, err := s.normalizeName(rawName)
	if err != nil {
		return err
	}

	img, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("画像の取得に失敗しました: %w", err)
	}
	if img == nil {
		return model.NewImageNotFoundError(id)
	}

	if auth.Authorize(identity, img.OwnerID) != auth.Allow {
		s.recorder.RecordOwnershipDenied()
		slog.Warn("image rename denied",
			slog.String("image_id", id),
			slog.String("username", identity.Username),
		)
		return model.NewForbiddenError()
	}

	affected, err := s.repo.UpdateName(ctx, id, name)
	if err != nil {
		return fmt.Errorf("画像名の更新に失敗しました: %w", err)
	}
	if affected == 0 {
		return model.NewImageNotFoundError(id)
	}

	return nil
}

// normalizeName は画像名からタグと前後の空白を除去し、長さを検証する。
func (s *Service) normalizeName(raw string) (string, error) {
	name := s.sanitizer.Sanitize(raw)
	if name == "" {
		return "", model.NewValidationError("画像名を指定してください。")
	}
	if utf8.RuneCountInString(name) > model.MaxImageNameLength {
		return "", model.NewImageNameTooLongError(model.MaxImageNameLength)
	}
	return name, nil
}
