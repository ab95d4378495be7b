// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// OAuthログイン時の初回登録で作成され、emailは全体で一意。
// 以降のログインでプロバイダー側のname/pictureが変わっても同期しない。
type User struct {
	ID        string
	Email     string
	Name      string
	Picture   string
	Provider  string // "google", "kakao" 等
	CreatedAt time.Time
}
