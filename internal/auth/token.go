package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/gallery/internal/model"
)

// TokenTTL はトークンの有効期間。発行時刻からの絶対期限で、延長はしない。
const TokenTTL = 24 * time.Hour

// トークン検証の失敗種別。呼び出し側ではいずれもアクセス拒否として扱う。
var (
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
)

// tokenClaims はトークンに格納するクレーム。
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenService はHS256署名のトークンを発行・検証する。
// 状態を持たないため、並行呼び出しに制限はない。
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService はTokenServiceを生成する。
func NewTokenService(secret string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}
}

// Issue は指定ユーザー名のトークンを発行する。
func (s *TokenService) Issue(username string) (string, error) {
	issuedAt := s.now()
	claims := tokenClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、利用者情報を返す。
// 失敗時はErrTokenExpired、ErrTokenMalformed、ErrTokenSignatureInvalidのいずれかを返す。
// 検証はトークン、秘密鍵、現在時刻のみで完結し、ストレージにはアクセスしない。
// 各セグメントは厳密なbase64urlとして復号し、末尾の未使用ビットが立った表記は受け付けない。
func (s *TokenService) Verify(token string) (model.Identity, error) {
	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return model.Identity{}, classifyTokenError(err)
	}

	if claims.Username == "" || claims.Username != claims.Subject {
		return model.Identity{}, ErrTokenMalformed
	}

	return model.Identity{Username: claims.Username}, nil
}

// classifyTokenError はjwtライブラリのエラーを失敗種別に変換する。
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}

// TokenFailureKind はログやメトリクス用に失敗種別の名前を返す。
func TokenFailureKind(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenSignatureInvalid):
		return "signature_invalid"
	default:
		return "malformed"
	}
}
