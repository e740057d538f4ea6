// Package security はアプリケーションのセキュリティ機能を提供する。
//
// NameSanitizer は利用者が入力した画像名からHTMLマークアップを除去する。
// bluemondayのStrictPolicyを使用し、タグはすべて取り除いてテキストのみを残す。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NameSanitizer は画像名のサニタイズ機能のインターフェースを定義する。
// 画像の作成時と名前変更時の保存前に使用される。
type NameSanitizer interface {
	// Sanitize はタグを除去し、前後の空白を取り除いたプレーンテキストを返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// nameSanitizer はNameSanitizerの実装。
// bluemondayのポリシーはスレッドセーフなため共有して使用する。
type nameSanitizer struct {
	policy *bluemonday.Policy
}

// NewNameSanitizer はNameSanitizerの新しいインスタンスを生成する。
func NewNameSanitizer() NameSanitizer {
	return &nameSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// maxSanitizeRounds はエンティティの多重エスケープを剥がす回数の上限。
const maxSanitizeRounds = 16

// Sanitize はタグを除去したプレーンテキストを返す。
// StrictPolicyが行うエンティティエスケープは元に戻し、表示側のエスケープに任せる。
// 復号でタグが現れる場合があるため、出力が変化しなくなるまで除去と復号を繰り返す。
func (s *nameSanitizer) Sanitize(raw string) string {
	current := strings.TrimSpace(raw)
	for range maxSanitizeRounds {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(current)))
		if next == current {
			return current
		}
		current = next
	}
	// 上限に達した場合は復号せずエスケープ済みの形で返す
	return strings.TrimSpace(s.policy.Sanitize(current))
}
