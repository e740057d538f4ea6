// Package auth は認証情報の保存、トークンの発行と検証、リソース所有者の認可判定を提供する。
//
// 構成要素:
//
//	PasswordHasher   パスワードの一方向ハッシュ化と定数時間比較
//	CredentialStore  ユーザー名とパスワードハッシュの登録・照合
//	TokenService     署名付き・期限付きトークンの発行と検証
//	Authorize        リソース所有者と利用者の一致判定
//	Service          登録・ログインのユースケース
package auth
