package pagination

// Page is a 1-based page request as the dashboard table sends it.
type Page struct {
	Number int `form:"page,default=1"`
	Size   int `form:"-"`
}

type PageInfo struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
}

// Normalize clamps Number to at least 1 and falls back to defaultSize.
func (p Page) Normalize(defaultSize int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = defaultSize
	}
	if p.Size <= 0 {
		p.Size = 1
	}
	return p
}

func (p Page) Offset() int {
	if p.Number < 1 || p.Size <= 0 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int {
	return p.Size
}

// TotalPages is ceil(total/size); zero items still yields zero pages.
func TotalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

func BuildPageInfo(page Page, total int64) PageInfo {
	return PageInfo{
		CurrentPage: page.Number,
		TotalPages:  TotalPages(total, page.Size),
		TotalItems:  total,
	}
}
