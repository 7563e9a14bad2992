package dto

// ── 共通ページング ──

// PaginationRequest 共通ページングパラメータ
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"limit"     binding:"omitempty,min=1,max=100"`
}

// GetPage ページ番号（デフォルト値込み）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 1ページあたり件数（デフォルト値込み）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset オフセットを計算する
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
