// Package model はドメインモデルを定義する。
package model

import "time"

// Credential はユーザー名とパスワードハッシュの組を表す。
// 登録時に作成され、以降は更新も削除もされない。
type Credential struct {
	Username     string // 主キー。大文字小文字を区別する
	PasswordHash string // bcryptハッシュ（ソルトを含む）
	CreatedAt    time.Time
}

// Identity は検証済みトークンから復元されたリクエスト単位の利用者情報を表す。
// 永続化はしない。
type Identity struct {
	Username string
}
