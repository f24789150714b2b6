package calendar

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage держит Offset() в пределах int при любом допустимом PageSize.
	MaxPage = math.MaxInt/MaxPageSize + 1
)

// Page описывает одну страницу элементов.
type Page[T any] struct {
	Items    []T   `json:"items"`     // элементы на текущей странице
	Page     int   `json:"page"`      // номер страницы (с 1)
	PageSize int   `json:"page_size"` // количество элементов на странице
	Total    int64 `json:"total"`     // общее количество элементов
	HasNext  bool  `json:"has_next"`
	HasPrev  bool  `json:"has_prev"`
}

// PageRequest is a normalised page/page_size pair.
type PageRequest struct {
	Page     int
	PageSize int
}

// NewPageRequest clamps page to [1, MaxPage] and pageSize to [1, MaxPageSize],
// using DefaultPageSize when pageSize is not positive.
func NewPageRequest(page, pageSize int) PageRequest {
	if page <= 0 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

func (r PageRequest) Offset() int { return (r.Page - 1) * r.PageSize }
func (r PageRequest) Limit() int  { return r.PageSize }

// NewPage builds page metadata for items already limited by the store.
func NewPage[T any](items []T, req PageRequest, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	end := int64(req.Offset()) + int64(len(items))
	return Page[T]{
		Items:    items,
		Page:     req.Page,
		PageSize: req.PageSize,
		Total:    total,
		HasNext:  end < total,
		HasPrev:  req.Page > 1,
	}
}

// Paginate возвращает срез items для указанной страницы и метаданные.
// Используется, когда фильтрация уже выполнена в памяти.
func Paginate[T any](items []T, req PageRequest) Page[T] {
	total := len(items)

	start := req.Offset()
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if total-start > req.PageSize {
		end = start + req.PageSize
	}

	return NewPage(items[start:end], req, int64(total))
}

// Map converts page items while keeping the metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, fn(it))
	}
	return Page[U]{
		Items:    out,
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
		HasNext:  p.HasNext,
		HasPrev:  p.HasPrev,
	}
}
