// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/gallery/internal/auth"
	"github.com/hitoshi/gallery/internal/model"
)

const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに利用者情報を格納するためのキー。
var identityContextKey = contextKey("identity")

// TokenVerifier はトークン検証に必要なインターフェース。
// auth.TokenServiceが実装する。
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// RejectionRecorder はトークン拒否をメトリクスに記録するためのインターフェース。
type RejectionRecorder interface {
	RecordTokenRejection(reason string)
}

// NewAuthMiddleware はAuthorizationヘッダーのBearerトークンを検証するミドルウェアを返す。
// トークンが提示されていない場合は401を返す。提示されたトークンが検証に失敗した場合やBearer以外のスキームの場合は403を返す。
// 検証に成功した場合のみ、利用者情報をリクエストコンテキストに注入して次のハンドラーを呼ぶ。
// recorderがnilの場合は記録を行わない。
func NewAuthMiddleware(verifier TokenVerifier, recorder RejectionRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, offered := bearerToken(r.Header.Get("Authorization"))
			if !offered {
				recordRejection(recorder, "missing")
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}
			if token == "" {
				slog.Warn("token rejected",
					slog.String("reason", "unsupported_scheme"),
					slog.String("path", r.URL.Path),
				)
				recordRejection(recorder, "unsupported_scheme")
				WriteErrorResponse(w, http.StatusForbidden, model.NewInvalidTokenError())
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				kind := auth.TokenFailureKind(err)
				slog.Warn("token rejected",
					slog.String("reason", kind),
					slog.String("path", r.URL.Path),
				)
				recordRejection(recorder, kind)
				WriteErrorResponse(w, http.StatusForbidden, model.NewInvalidTokenError())
				return
			}

			setLoggedUsername(r.Context(), identity.Username)
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// bearerToken はAuthorizationヘッダー値からトークン部分を取り出す。
// offeredは何らかの資格情報が提示されたかどうかを示す。
// ヘッダーが空、またはBearerスキームでトークンが空の場合はofferedがfalseになる。
// Bearer以外のスキームはofferedがtrueでトークンは空になる。
func bearerToken(header string) (token string, offered bool) {
	header = strings.TrimSpace(header)
	if header == "" || strings.EqualFold(header, strings.TrimSpace(bearerPrefix)) {
		return "", false
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", true
	}
	token = strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

func recordRejection(recorder RejectionRecorder, reason string) {
	if recorder != nil {
		recorder.RecordTokenRejection(reason)
	}
}

// IdentityFromContext はリクエストコンテキストから利用者情報を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (model.Identity, error) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	if !ok || identity.Username == "" {
		return model.Identity{}, fmt.Errorf("identity not found in context")
	}
	return identity, nil
}

// ContextWithIdentity はコンテキストに利用者情報を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
