package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/gallery/internal/model"
)

// multipartOverhead はマルチパートのヘッダーや名前フィールド分の余裕。
const multipartOverhead = 1 << 20

// ImageServiceInterface は画像ハンドラーが必要とするサービスインターフェース。
// image.Serviceが実装する。
type ImageServiceInterface interface {
	List(ctx context.Context, nameFilter string) ([]*model.Image, error)
	Get(ctx context.Context, id string) (*model.Image, error)
	Upload(ctx context.Context, identity model.Identity, name string, data []byte) (*model.Image, error)
	Rename(ctx context.Context, identity model.Identity, id, name string) error
	MaxSize() int64
}

// ImageHandler は画像リソースのHTTPハンドラー。
type ImageHandler struct {
	service ImageServiceInterface
}

// NewImageHandler はImageHandlerを生成する。
func NewImageHandler(service ImageServiceInterface) *ImageHandler {
	return &ImageHandler{
		service: service,
	}
}

// authorResponse は画像の作成者情報。
type authorResponse struct {
	Username string `json:"username"`
}

// imageResponse は画像のAPIレスポンス。
type imageResponse struct {
	ID     string         `json:"id"`
	Src    string         `json:"src"`
	Name   string         `json:"name"`
	Author authorResponse `json:"author"`
}

// renameRequest は画像名変更リクエストのボディ。
type renameRequest struct {
	Name *string `json:"name"`
}

func toImageResponse(img *model.Image) imageResponse {
	return imageResponse{
		ID:     img.ID,
		Src:    img.Src,
		Name:   img.Name,
		Author: authorResponse{Username: img.OwnerID},
	}
}

// ListImages は画像一覧を返す。nameクエリで名前の部分一致検索を行う。
// GET /api/images
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]imageResponse, len(images))
	for i, img := range images {
		resp[i] = toImageResponse(img)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetImage は単一の画像を返す。
// GET /api/images/{id}
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	img, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toImageResponse(img))
}

// UploadImage はマルチパートフォームの画像を保存する。
// POST /api/images （フィールド: image, name）
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	maxSize := h.service.MaxSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewImageTooLargeError(maxSize))
			return
		}
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("マルチパートフォームの解析に失敗しました。"))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("failed to remove multipart temp files", slog.String("error", err.Error()))
		}
	}()

	file, _, err := r.FormFile("image")
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("画像ファイルを指定してください。"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	img, err := h.service.Upload(r.Context(), identity, r.FormValue("name"), data)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toImageResponse(img))
}

// RenameImage は画像名を変更する。所有者のみが実行できる。
// PATCH /api/images/{id}
func (h *ImageHandler) RenameImage(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewImageNotFoundError(id))
		return
	}

	var req renameRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidJSONError())
		return
	}
	if req.Name == nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("画像名を指定してください。"))
		return
	}

	if err := h.service.Rename(r.Context(), identity, id, *req.Name); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
