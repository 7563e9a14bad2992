package dto

// ── シフトモジュール DTO ──

// ShiftCalendarRequest 月次カレンダークエリパラメータ
type ShiftCalendarRequest struct {
	Year  int   `form:"year"  binding:"omitempty,min=2000,max=2100"`
	Month int   `form:"month" binding:"omitempty,min=1,max=12"`
	Group *uint `form:"group"`
}

// CreateShiftRequest シフト登録リクエスト
type CreateShiftRequest struct {
	EmployeeID  uint    `json:"employee_id" binding:"required"`
	ShiftDate   string  `json:"shift_date"  binding:"required"`
	ShiftCode   *string `json:"shift_code"  binding:"omitempty,max=20"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	IsHoliday   bool    `json:"is_holiday"`
	IsPaidLeave bool    `json:"is_paid_leave"`
	IsRemote    bool    `json:"is_remote"`
}

// ShiftUpdateFields シフト部分更新のフィールド集合
// nil でないフィールドのみ適用する（空文字は null 化）
type ShiftUpdateFields struct {
	ShiftCode   *string `json:"shift_code"  binding:"omitempty,max=20"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	IsHoliday   *bool   `json:"is_holiday"`
	IsPaidLeave *bool   `json:"is_paid_leave"`
	IsRemote    *bool   `json:"is_remote"`
}

// UpdateShiftRequest シフト更新リクエスト
type UpdateShiftRequest struct {
	ShiftUpdateFields
	Note *string `json:"note" binding:"omitempty,max=255"`
}

// BulkUpdateShiftsRequest 一括更新リクエスト
type BulkUpdateShiftsRequest struct {
	ShiftIDs []uint            `json:"shift_ids" binding:"required,min=1"`
	Updates  ShiftUpdateFields `json:"updates"`
	Note     *string           `json:"note"      binding:"omitempty,max=255"`
}

// BulkUpdateShiftsResponse 一括更新結果
type BulkUpdateShiftsResponse struct {
	Count     int    `json:"count"`
	FailedIDs []uint `json:"failed_ids,omitempty"`
}

// RestoreShiftRequest バージョン復元リクエスト
type RestoreShiftRequest struct {
	Version int `json:"version" binding:"required,min=1"`
}

// ShiftResponse シフト現在状態
type ShiftResponse struct {
	ID          uint    `json:"id"`
	EmployeeID  uint    `json:"employee_id"`
	ShiftDate   string  `json:"shift_date"`
	ShiftCode   *string `json:"shift_code,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	IsHoliday   bool    `json:"is_holiday"`
	IsPaidLeave bool    `json:"is_paid_leave"`
	IsRemote    bool    `json:"is_remote"`
}

// ── 月次カレンダー ──

// CalendarShift カレンダー1マス分のシフト
type CalendarShift struct {
	ID          uint    `json:"id"`
	Date        string  `json:"date"`
	ShiftCode   *string `json:"shift_code,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	IsHoliday   bool    `json:"is_holiday"`
	IsPaidLeave bool    `json:"is_paid_leave"`
	IsRemote    bool    `json:"is_remote"`
}

// CalendarEmployee カレンダー1行分（従業員）
type CalendarEmployee struct {
	ID     uint            `json:"id"`
	Name   string          `json:"name"`
	Shifts []CalendarShift `json:"shifts"`
}

// CalendarGroup グループ単位のカレンダー
type CalendarGroup struct {
	ID        uint               `json:"id"`
	Name      string             `json:"name"`
	Employees []CalendarEmployee `json:"employees"`
}

// ShiftCalendarResponse 月次カレンダーレスポンス
type ShiftCalendarResponse struct {
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	DaysInMonth int             `json:"days_in_month"`
	Groups      []CalendarGroup `json:"groups"`
}

// ── 変更履歴 ──

// ShiftHistoryListRequest 変更履歴一覧クエリパラメータ
type ShiftHistoryListRequest struct {
	Q    string  `form:"q"`
	From *string `form:"from"`
	To   *string `form:"to"`
	Type string  `form:"type" binding:"omitempty,oneof=all UPDATE DELETE"`
	PaginationRequest
}

// ShiftState 履歴行に添える変更前後の状態
type ShiftState struct {
	ShiftCode   *string `json:"shift_code,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	IsHoliday   bool    `json:"is_holiday"`
	IsPaidLeave bool    `json:"is_paid_leave"`
	IsRemote    bool    `json:"is_remote"`
}

// HistoryEmployee 履歴行の従業員情報
type HistoryEmployee struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ShiftHistoryResponse 変更履歴の1行
// Previous は履歴が捉えた直前状態、Current はシフトの現在状態（削除済みなら null）
type ShiftHistoryResponse struct {
	ID         uint            `json:"id"`
	ShiftID    uint            `json:"shift_id"`
	Employee   HistoryEmployee `json:"employee"`
	ShiftDate  string          `json:"shift_date"`
	ChangeType string          `json:"change_type"`
	Version    int             `json:"version"`
	ChangedAt  string          `json:"changed_at"`
	Note       *string         `json:"note,omitempty"`
	Previous   ShiftState      `json:"previous"`
	Current    *ShiftState     `json:"current,omitempty"`
}
