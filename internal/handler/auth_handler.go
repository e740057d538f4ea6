package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/gallery/internal/auth"
	"github.com/hitoshi/gallery/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
// auth.Serviceが実装する。
type AuthServiceInterface interface {
	// Register はユーザーを登録してトークンを返す。
	Register(ctx context.Context, username, password string) (string, error)
	// Login は認証情報を照合してトークンを返す。
	Login(ctx context.Context, username, password string) (string, error)
}

// AuthHandler は登録・ログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		service: service,
	}
}

// credentialsRequest は登録・ログインリクエストのボディ。
// 欠落と空文字を区別するためポインタで受ける。
type credentialsRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// tokenResponse はトークン発行レスポンスのボディ。
type tokenResponse struct {
	Token string `json:"token"`
}

// Register はユーザーを登録し、トークンを返す。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username, password, ok := h.parseCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.service.Register(r.Context(), username, password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}

// Login はユーザー名とパスワードを照合し、トークンを返す。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := h.parseCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// parseCredentials はリクエストボディからユーザー名とパスワードを取り出して検証する。
// 不正な場合は400を書き込みfalseを返す。
func (h *AuthHandler) parseCredentials(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	var req credentialsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, invalidJSONError())
		return "", "", false
	}

	if req.Username == nil || *req.Username == "" || req.Password == nil || *req.Password == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("ユーザー名とパスワードを指定してください。"))
		return "", "", false
	}

	// bcryptは72バイトを超える部分を無視するため受け付けない
	if len(*req.Password) > auth.MaxPasswordBytes {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("パスワードが長すぎます。"))
		return "", "", false
	}

	return *req.Username, *req.Password, true
}
