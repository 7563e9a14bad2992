package dto

// ── グループモジュール DTO ──

// GroupRequest グループ作成・更新リクエスト
type GroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

// GroupResponse グループ情報（在籍従業員数付き）
type GroupResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	EmployeeCount int64  `json:"employee_count"`
}

// GroupRef 埋め込み用のグループ簡易情報
type GroupRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
