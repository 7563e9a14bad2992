package handler

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"shift-kanri/internal/service"
	"shift-kanri/pkg/response"
)

// Handler 全 Handler の集約
type Handler struct {
	Group    *GroupHandler
	Employee *EmployeeHandler
	Shift    *ShiftHandler
	Export   *ExportHandler
}

// NewHandler Handler 集約を作成する
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Group:    NewGroupHandler(svc.Group),
		Employee: NewEmployeeHandler(svc.Employee, svc.NameHistory, svc.Role),
		Shift:    NewShiftHandler(svc.Shift),
		Export:   NewExportHandler(svc.Export),
	}
}

// parseIDParam パスパラメータを ID として解釈する。不正なら 400 を返して false
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, "ID の形式が不正です")
		return 0, false
	}
	return uint(id), true
}

// respondValidationError フィールドエラーを details 付き 400 で返す
func respondValidationError(c *gin.Context, verr *service.ValidationError) {
	fields := make([]string, 0, len(verr.Fields))
	for field, msg := range verr.Fields {
		fields = append(fields, field+": "+msg)
	}
	sort.Strings(fields)
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "入力値が不正です", strings.Join(fields, "; "))
}
