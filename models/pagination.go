package models

// PaginationQuery 分页查询参数（limit/offset风格，与移动端约定一致）
type PaginationQuery struct {
	Limit  int `form:"limit" json:"limit"`
	Offset int `form:"offset" json:"offset"`
}

// Normalize 规范化分页参数，避免无界查询
func (p *PaginationQuery) Normalize() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PaginationResult 分页结果元信息
type PaginationResult struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// NewPaginationResult 创建一个新的分页结果对象
func NewPaginationResult(total int64, limit, offset int) PaginationResult {
	return PaginationResult{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
}
