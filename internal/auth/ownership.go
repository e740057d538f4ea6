package auth

import "github.com/hitoshi/gallery/internal/model"

// Decision は所有者チェックの判定結果を表す。
type Decision int

const (
	// Deny は変更を拒否する。
	Deny Decision = iota
	// Allow は変更を許可する。
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Authorize は利用者がリソースの所有者と一致する場合のみAllowを返す。
// リソースへの書き込みの前に呼び出すこと。読み取りには使用しない。
func Authorize(identity model.Identity, resourceOwnerID string) Decision {
	if identity.Username == "" || identity.Username != resourceOwnerID {
		return Deny
	}
	return Allow
}
