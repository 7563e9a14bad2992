package model

import "time"

// DateFormat 日付のみカラム（valid_from 等）の入出力フォーマット
const DateFormat = "2006-01-02"

// BaseModel 共通監査フィールド（各業務モデルに埋め込む）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// DateOnly 時刻成分を落として日付のみ（UTC 0時）に正規化する
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
