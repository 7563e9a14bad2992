package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/service"
	"shift-kanri/pkg/response"
)

// ShiftHandler シフト・変更履歴モジュール HTTP ハンドラ
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler ShiftHandler を作成する
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// GetCalendar 月次カレンダー取得
// GET /api/v1/shifts/calendar
func (h *ShiftHandler) GetCalendar(c *gin.Context) {
	var req dto.ShiftCalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	cal, err := h.shiftSvc.Calendar(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, cal)
}

// CreateShift シフト登録
// POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.Created(c, shift)
}

// UpdateShift シフト更新（変更前状態を履歴へ記録）
// PUT /api/v1/shifts/:id
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	shift, err := h.shiftSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, shift)
}

// BulkUpdateShifts シフト一括更新（1件ずつ適用し、失敗分はスキップ）
// PUT /api/v1/shifts/bulk
func (h *ShiftHandler) BulkUpdateShifts(c *gin.Context) {
	var req dto.BulkUpdateShiftsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	result, err := h.shiftSvc.BulkUpdate(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, result)
}

// RestoreShift 過去バージョンからの復元
// POST /api/v1/shifts/:id/restore
func (h *ShiftHandler) RestoreShift(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RestoreShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	shift, err := h.shiftSvc.Restore(c.Request.Context(), id, req.Version)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, shift)
}

// DeleteShift シフト削除（最終状態を履歴へ記録）
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var note *string
	if v := c.Query("note"); v != "" {
		note = &v
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), id, note); err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListShiftHistory 変更履歴一覧取得
// GET /api/v1/shift-histories
func (h *ShiftHandler) ListShiftHistory(c *gin.Context) {
	var req dto.ShiftHistoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	entries, total, err := h.shiftSvc.ListHistory(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OKPage(c, entries, total, req.GetPage(), req.GetPageSize())
}

// DeleteShiftHistory 変更履歴の削除（バージョン番号の詰め直しはしない）
// DELETE /api/v1/shift-histories/:id
func (h *ShiftHandler) DeleteShiftHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.shiftSvc.DeleteHistory(c.Request.Context(), id); err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleShiftError シフトモジュール業務エラーの統一処理
func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidationError(c, verr)
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 15001, "シフトが見つかりません")
	case errors.Is(err, service.ErrShiftDuplicate):
		response.Conflict(c, 15002, "同じ日付のシフトが既に存在します")
	case errors.Is(err, service.ErrShiftVersionNotFound):
		response.NotFound(c, 15003, "指定されたバージョンが見つかりません")
	case errors.Is(err, service.ErrShiftHistoryNotFound):
		response.NotFound(c, 15004, "変更履歴が見つかりません")
	case errors.Is(err, service.ErrNoShiftsInBulkRequest):
		response.BadRequest(c, 15005, "更新対象のシフトが指定されていません")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "従業員が見つかりません")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 11001, "グループが見つかりません")
	default:
		response.InternalError(c)
	}
}
