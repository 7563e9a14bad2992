package service

import (
	"regexp"
	"time"

	"shift-kanri/internal/model"
)

// ValidationError 入力値エラー。フィールドごとのメッセージを運ぶ
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "入力値が不正です" }

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// parseDate "YYYY-MM-DD" をパースし日付のみに正規化する
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(model.DateFormat, value)
	if err != nil {
		return time.Time{}, newValidationError(field, "日付は YYYY-MM-DD 形式で指定してください")
	}
	return model.DateOnly(t), nil
}

// parseOptionalDate nil / 空文字は「指定なし」として nil を返す
func parseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// validateTimeOfDay "HH:MM" 形式を検査する。空文字は null 化なので許容
func validateTimeOfDay(field string, value *string) error {
	if value == nil || *value == "" {
		return nil
	}
	if !timeOfDayPattern.MatchString(*value) {
		return newValidationError(field, "時刻は HH:MM 形式で指定してください")
	}
	return nil
}

// formatDate 日付のみフォーマットで文字列化する
func formatDate(t time.Time) string { return t.Format(model.DateFormat) }

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(model.DateFormat)
	return &s
}

// emptyToNil 空文字指定を NULL として扱う
func emptyToNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	if *value == "" {
		return nil
	}
	return *value
}
