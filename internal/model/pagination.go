package model

const (
	// DefaultPage is used when the client does not send `page`.
	DefaultPage = 1

	// DefaultPageSize is used when the client does not send `page_size`.
	DefaultPageSize = 20

	// MaxPageSize bounds `page_size`.
	MaxPageSize = 100
)

// PaginatedResponse is one page of items plus the descriptor needed to walk
// the rest of the collection.
type PaginatedResponse[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}

// Paginate builds the page descriptor for items.
//
// It does not validate or clamp its inputs: callers check page >= 1 and
// pageSize in [1, MaxPageSize] first. A page past the last one is reported
// as-is, with whatever (usually empty) items the caller fetched.
func Paginate[T any](items []T, total, page, pageSize int) PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}

	return PaginatedResponse[T]{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    PageCount(total, pageSize),
	}
}

// HasNext reports whether a page after this one exists.
func (p PaginatedResponse[T]) HasNext() bool {
	return p.Page < p.Pages
}

// HasPrev reports whether a page before this one exists.
func (p PaginatedResponse[T]) HasPrev() bool {
	return p.Page > 1
}

// PageCount is ceil(total / pageSize) in integer arithmetic. pageSize must be >= 1.
func PageCount(total, pageSize int) int {
	return (total + pageSize - 1) / pageSize
}

// PageOffset is the number of items skipped before page.
func PageOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}
