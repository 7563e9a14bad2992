package dto

import "encoding/json"

// ── 従業員モジュール DTO ──

// EmployeeListRequest 従業員一覧クエリパラメータ
type EmployeeListRequest struct {
	Q      string `form:"q"`
	Group  *uint  `form:"group"`
	Status string `form:"status" binding:"omitempty,oneof=active inactive all"`
	Role   *uint  `form:"role"`
	Sort   string `form:"sort"   binding:"omitempty,oneof=name assignment_date"`
	Order  string `form:"order"  binding:"omitempty,oneof=asc desc"`
	PaginationRequest
}

// CreateEmployeeRequest 従業員登録リクエスト
type CreateEmployeeRequest struct {
	Name           string  `json:"name"            binding:"required,min=1,max=100"`
	NameKana       *string `json:"name_kana"       binding:"omitempty,max=100"`
	GroupID        uint    `json:"group_id"        binding:"required"`
	AssignmentDate *string `json:"assignment_date" binding:"omitempty"`
}

// UpdateEmployeeRequest 従業員更新リクエスト（指定フィールドのみ適用）
type UpdateEmployeeRequest struct {
	GroupID         *uint   `json:"group_id"`
	AssignmentDate  *string `json:"assignment_date"`
	TerminationDate *string `json:"termination_date"`
}

// RoleBrief 一覧表示用の現行役割
type RoleBrief struct {
	ID        uint   `json:"id"`
	RoleName  string `json:"role_name"`
	RoleType  string `json:"role_type"`
	IsPrimary bool   `json:"is_primary"`
}

// EmployeeListItem 従業員一覧の1行
type EmployeeListItem struct {
	ID              uint        `json:"id"`
	Name            string      `json:"name"`
	NameKana        *string     `json:"name_kana,omitempty"`
	Group           *GroupRef   `json:"group,omitempty"`
	Roles           []RoleBrief `json:"roles"`
	AssignmentDate  *string     `json:"assignment_date,omitempty"`
	TerminationDate *string     `json:"termination_date,omitempty"`
	IsActive        bool        `json:"is_active"`
}

// EmployeeDetailResponse 従業員詳細
type EmployeeDetailResponse struct {
	ID              uint                     `json:"id"`
	Name            string                   `json:"name"`
	NameKana        *string                  `json:"name_kana,omitempty"`
	Group           *GroupRef                `json:"group,omitempty"`
	GroupID         uint                     `json:"group_id"`
	AssignmentDate  *string                  `json:"assignment_date,omitempty"`
	TerminationDate *string                  `json:"termination_date,omitempty"`
	IsActive        bool                     `json:"is_active"`
	Roles           []RoleAssignmentResponse `json:"roles"`
	NameHistory     []NameHistoryResponse    `json:"name_history"`
}

// ── 氏名履歴 DTO ──

// NameChangeRequest 氏名変更（履歴追加・編集共通）リクエスト
type NameChangeRequest struct {
	Name      string  `json:"name"       binding:"required,min=1,max=100"`
	NameKana  *string `json:"name_kana"  binding:"omitempty,max=100"`
	ValidFrom string  `json:"valid_from" binding:"required"`
	Note      *string `json:"note"       binding:"omitempty,max=255"`
}

// NameHistoryResponse 氏名履歴の1行
type NameHistoryResponse struct {
	ID        uint    `json:"id"`
	Name      string  `json:"name"`
	NameKana  *string `json:"name_kana,omitempty"`
	ValidFrom string  `json:"valid_from"`
	ValidTo   *string `json:"valid_to,omitempty"`
	IsCurrent bool    `json:"is_current"`
	Note      *string `json:"note,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// ── 役割割当 DTO ──

// RoleAssignRequest 役割割当リクエスト
type RoleAssignRequest struct {
	FunctionRoleID uint   `json:"function_role_id" binding:"required"`
	IsPrimary      bool   `json:"is_primary"`
	StartDate      string `json:"start_date"       binding:"required"`
}

// RoleEditRequest 役割割当の部分更新リクエスト
// end_date はキー自体の有無が意味を持つ（null 指定で再オープン）ため
// UnmarshalJSON でキーの存在を検出する
type RoleEditRequest struct {
	IsPrimary  *bool   `json:"is_primary"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	EndDateSet bool    `json:"-"`
}

func (r *RoleEditRequest) UnmarshalJSON(data []byte) error {
	type alias RoleEditRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*r = RoleEditRequest(a)
	_, r.EndDateSet = keys["end_date"]
	return nil
}

// RoleAssignmentResponse 役割割当の1行
type RoleAssignmentResponse struct {
	ID             uint    `json:"id"`
	FunctionRoleID uint    `json:"function_role_id"`
	RoleName       string  `json:"role_name"`
	RoleCode       string  `json:"role_code"`
	RoleType       string  `json:"role_type"`
	IsPrimary      bool    `json:"is_primary"`
	StartDate      string  `json:"start_date"`
	EndDate        *string `json:"end_date,omitempty"`
}

// EmployeeRolesResponse 現行・過去に分けた役割一覧
type EmployeeRolesResponse struct {
	Current []RoleAssignmentResponse `json:"current"`
	Past    []RoleAssignmentResponse `json:"past"`
}

// FunctionRoleResponse 役割マスタの1行
type FunctionRoleResponse struct {
	ID       uint   `json:"id"`
	RoleCode string `json:"role_code"`
	RoleName string `json:"role_name"`
	RoleType string `json:"role_type"`
	IsActive bool   `json:"is_active"`
}
