package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/service"
	"shift-kanri/pkg/response"
)

// EmployeeHandler 従業員・氏名履歴・役割割当モジュール HTTP ハンドラ
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
	nameSvc     service.NameHistoryService
	roleSvc     service.RoleService
}

// NewEmployeeHandler EmployeeHandler を作成する
func NewEmployeeHandler(employeeSvc service.EmployeeService, nameSvc service.NameHistoryService, roleSvc service.RoleService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc, nameSvc: nameSvc, roleSvc: roleSvc}
}

// ────────────────────── 従業員 ──────────────────────

// ListEmployees 従業員一覧取得
// GET /api/v1/employees
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	var req dto.EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	items, total, err := h.employeeSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// CreateEmployee 従業員登録（初期氏名履歴も同時に作成される）
// POST /api/v1/employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	employee, err := h.employeeSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.Created(c, employee)
}

// GetEmployee 従業員詳細取得
// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	employee, err := h.employeeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, employee)
}

// UpdateEmployee 従業員更新
// PUT /api/v1/employees/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	employee, err := h.employeeSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, employee)
}

// ────────────────────── 氏名履歴 ──────────────────────

// ListNameHistory 氏名履歴一覧取得
// GET /api/v1/employees/:id/name-history
func (h *EmployeeHandler) ListNameHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.nameSvc.List(c.Request.Context(), id)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, gin.H{"list": entries})
}

// CreateNameChange 氏名変更の追加
// POST /api/v1/employees/:id/name-history
func (h *EmployeeHandler) CreateNameChange(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.NameChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	entry, err := h.nameSvc.Append(c.Request.Context(), id, &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.Created(c, entry)
}

// UpdateNameHistory 氏名履歴の編集
// PUT /api/v1/employees/:id/name-history/:entryId
func (h *EmployeeHandler) UpdateNameHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entryID, ok := parseIDParam(c, "entryId")
	if !ok {
		return
	}
	var req dto.NameChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	entry, err := h.nameSvc.Edit(c.Request.Context(), id, entryID, &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, entry)
}

// DeleteNameHistory 氏名履歴の削除（隣接レコードを修復して不変条件を保つ）
// DELETE /api/v1/employees/:id/name-history/:entryId
func (h *EmployeeHandler) DeleteNameHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	entryID, ok := parseIDParam(c, "entryId")
	if !ok {
		return
	}

	if err := h.nameSvc.Delete(c.Request.Context(), id, entryID); err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, nil)
}

// ────────────────────── 役割割当 ──────────────────────

// ListFunctionRoles 役割マスタ一覧取得
// GET /api/v1/function-roles
func (h *EmployeeHandler) ListFunctionRoles(c *gin.Context) {
	roles, err := h.roleSvc.ListFunctionRoles(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": roles})
}

// ListEmployeeRoles 従業員の役割割当一覧取得（現行・過去区分）
// GET /api/v1/employees/:id/roles
func (h *EmployeeHandler) ListEmployeeRoles(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	roles, err := h.roleSvc.ListByEmployee(c.Request.Context(), id)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, roles)
}

// AssignRole 役割割当（同カテゴリの現行割当は自動的に閉じる）
// POST /api/v1/employees/:id/roles
func (h *EmployeeHandler) AssignRole(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RoleAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	assignment, err := h.roleSvc.Assign(c.Request.Context(), id, &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.Created(c, assignment)
}

// UpdateRoleAssignment 役割割当の部分更新
// PUT /api/v1/employees/:id/roles/:assignmentId
func (h *EmployeeHandler) UpdateRoleAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}
	var req dto.RoleEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	assignment, err := h.roleSvc.Edit(c.Request.Context(), id, assignmentID, &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, assignment)
}

// DeleteRoleAssignment 役割割当の削除
// DELETE /api/v1/employees/:id/roles/:assignmentId
func (h *EmployeeHandler) DeleteRoleAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	assignmentID, ok := parseIDParam(c, "assignmentId")
	if !ok {
		return
	}

	if err := h.roleSvc.Delete(c.Request.Context(), id, assignmentID); err != nil {
		h.handleEmployeeError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleEmployeeError 従業員まわりの業務エラーの統一処理
func (h *EmployeeHandler) handleEmployeeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		respondValidationError(c, verr)
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12001, "従業員が見つかりません")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 11001, "グループが見つかりません")
	case errors.Is(err, service.ErrNameHistoryNotFound):
		response.NotFound(c, 13001, "氏名履歴が見つかりません")
	case errors.Is(err, service.ErrFunctionRoleNotFound):
		response.NotFound(c, 14001, "役割が見つかりません")
	case errors.Is(err, service.ErrRoleAssignmentNotFound):
		response.NotFound(c, 14002, "役割割当が見つかりません")
	case errors.Is(err, service.ErrRoleConflict):
		response.Conflict(c, 14003, "この従業員には同じ役割カテゴリの現行レコードが既に存在します")
	default:
		response.InternalError(c)
	}
}
