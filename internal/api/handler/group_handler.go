package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shift-kanri/internal/dto"
	"shift-kanri/internal/service"
	"shift-kanri/pkg/response"
)

// GroupHandler グループモジュール HTTP ハンドラ
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler GroupHandler を作成する
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// ListGroups グループ一覧取得
// GET /api/v1/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": groups})
}

// CreateGroup グループ作成
// POST /api/v1/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	group, err := h.groupSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}
	response.Created(c, group)
}

// UpdateGroup グループ更新
// PUT /api/v1/groups/:id
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "パラメータが不正です")
		return
	}

	group, err := h.groupSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}
	response.OK(c, group)
}

// DeleteGroup グループ削除（在籍従業員が残っていれば 409）
// DELETE /api/v1/groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.groupSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleGroupError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleGroupError グループモジュール業務エラーの統一処理
func (h *GroupHandler) handleGroupError(c *gin.Context, err error) {
	var inUse *service.GroupInUseError
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 11001, "グループが見つかりません")
	case errors.Is(err, service.ErrGroupNameExists):
		response.Conflict(c, 11002, "同じ名前のグループが既に存在します")
	case errors.As(err, &inUse):
		response.Conflict(c, 11003, inUse.Error())
	default:
		response.InternalError(c)
	}
}
