package errors

import (
	"errors"

	"gorm.io/gorm"
)

// IsDuplicateKey 一意制約違反かどうか
// gorm.Config の TranslateError によりドライバ固有エラーが翻訳される前提
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
