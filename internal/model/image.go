package model

import "time"

// MaxImageNameLength は画像名の最大文字数。
const MaxImageNameLength = 100

// Image はギャラリーに投稿された画像を表す。
// OwnerIDは作成時に設定され、以後変更されない。
type Image struct {
	ID        string
	Src       string
	Name      string
	OwnerID   string
	CreatedAt time.Time
}
