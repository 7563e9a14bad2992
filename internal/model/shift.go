package model

import "time"

// 変更履歴の change_type
const (
	ShiftChangeUpdate = "UPDATE"
	ShiftChangeDelete = "DELETE"
)

// Shift シフト現在状態 — shifts
// start_time / end_time は "HH:MM" の時刻文字列（日付の意味は shift_date が持つ）
type Shift struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EmployeeID  uint      `gorm:"not null;uniqueIndex:idx_shifts_employee_date" json:"employee_id"`
	ShiftDate   time.Time `gorm:"type:date;not null;uniqueIndex:idx_shifts_employee_date" json:"shift_date"`
	ShiftCode   *string   `gorm:"type:varchar(20)" json:"shift_code,omitempty"`
	StartTime   *string   `gorm:"type:varchar(5)" json:"start_time,omitempty"`
	EndTime     *string   `gorm:"type:varchar(5)" json:"end_time,omitempty"`
	IsHoliday   bool      `gorm:"not null;default:false" json:"is_holiday"`
	IsPaidLeave bool      `gorm:"not null;default:false" json:"is_paid_leave"`
	IsRemote    bool      `gorm:"not null;default:false" json:"is_remote"`
	// LastVersion 履歴へ払い出した最新バージョン番号。
	// 履歴行を削除しても番号を再利用しないため、履歴の max ではなくここで採番する
	LastVersion int `gorm:"not null;default:0" json:"-"`
	BaseModel
}

func (Shift) TableName() string { return "shifts" }

// ShiftChangeHistory シフト変更履歴 — shift_change_histories（追記専用）
// 各シフト変更・削除の直前状態を version 連番付きで保存する。
// (shift_id, version) は一意で、復元のキーになる。
type ShiftChangeHistory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ShiftID     uint      `gorm:"not null;index:idx_shift_histories_shift_version,unique" json:"shift_id"`
	Version     int       `gorm:"not null;index:idx_shift_histories_shift_version,unique" json:"version"`
	EmployeeID  uint      `gorm:"not null;index" json:"employee_id"`
	ShiftDate   time.Time `gorm:"type:date;not null" json:"shift_date"`
	ChangeType  string    `gorm:"type:varchar(10);not null" json:"change_type"` // UPDATE | DELETE
	ShiftCode   *string   `gorm:"type:varchar(20)" json:"shift_code,omitempty"`
	StartTime   *string   `gorm:"type:varchar(5)" json:"start_time,omitempty"`
	EndTime     *string   `gorm:"type:varchar(5)" json:"end_time,omitempty"`
	IsHoliday   bool      `gorm:"not null;default:false" json:"is_holiday"`
	IsPaidLeave bool      `gorm:"not null;default:false" json:"is_paid_leave"`
	IsRemote    bool      `gorm:"not null;default:false" json:"is_remote"`
	Note        *string   `gorm:"type:varchar(255)" json:"note,omitempty"`
	ChangedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"changed_at"`
}

func (ShiftChangeHistory) TableName() string { return "shift_change_histories" }

// SnapshotOf シフトの現在状態から直前状態スナップショットを作る
func SnapshotOf(s *Shift, changeType string, version int) *ShiftChangeHistory {
	return &ShiftChangeHistory{
		ShiftID:     s.ID,
		Version:     version,
		EmployeeID:  s.EmployeeID,
		ShiftDate:   s.ShiftDate,
		ChangeType:  changeType,
		ShiftCode:   s.ShiftCode,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		IsHoliday:   s.IsHoliday,
		IsPaidLeave: s.IsPaidLeave,
		IsRemote:    s.IsRemote,
	}
}
