package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/service"
	"shift-kanri/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler エクスポートモジュール HTTP ハンドラ
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler ExportHandler を作成する
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportMonthlyXLSX 月次シフト表の Excel 出力
// GET /api/v1/export/shifts.xlsx
func (h *ExportHandler) ExportMonthlyXLSX(c *gin.Context) {
	var req dto.ShiftCalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	buf, filename, err := h.exportSvc.ExportMonthlyXLSX(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	setAttachmentHeader(c, filename)
	c.Data(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

// ExportEmployeeICS 従業員別シフトの iCalendar 出力
// GET /api/v1/export/employees/:id/shifts.ics
func (h *ExportHandler) ExportEmployeeICS(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ShiftCalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	buf, filename, err := h.exportSvc.ExportEmployeeICS(c.Request.Context(), id, req.Year, req.Month)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	setAttachmentHeader(c, filename)
	c.Data(http.StatusOK, contentTypeICS, buf.Bytes())
}

// setAttachmentHeader 日本語ファイル名を RFC 5987 形式で渡す
func setAttachmentHeader(c *gin.Context, filename string) {
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
}

// handleExportError エクスポートモジュール業務エラーの統一処理
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidationError(c, verr)
	case errors.Is(err, service.ErrExportNoShifts):
		response.NotFound(c, 16001, "対象期間にシフトがありません")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 16002, "ファイル生成に失敗しました")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "従業員が見つかりません")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 11001, "グループが見つかりません")
	default:
		response.InternalError(c)
	}
}
