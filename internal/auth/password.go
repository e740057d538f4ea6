package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost はbcryptのコストパラメータ。利用者からは変更できない固定値。
const BcryptCost = 10

// MaxPasswordBytes はbcryptが扱えるパスワードの最大バイト数。
const MaxPasswordBytes = 72

// PasswordHasher はパスワードのハッシュ化と照合を行う。
type PasswordHasher interface {
	// Hash はソルト付きのハッシュを生成する。同じ入力でも呼び出しごとに異なる値を返す。
	Hash(plaintext string) (string, error)
	// Verify は平文とハッシュが一致するかを返す。比較は定数時間で行う。
	Verify(plaintext, digest string) bool
}

// BcryptHasher はbcryptによるPasswordHasherの実装。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher はBcryptCostを使用するBcryptHasherを生成する。
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: BcryptCost}
}

// Hash はソルト付きのbcryptハッシュを生成する。
// 下位のハッシュ処理が失敗した場合はエラーをそのまま返し、別方式へのフォールバックはしない。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify は平文とbcryptハッシュが一致するかを返す。
// 不正な形式のハッシュに対してもfalseを返す。
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	return err == nil
}

// compile-time interface check
var _ PasswordHasher = (*BcryptHasher)(nil)
