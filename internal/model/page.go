package model

// Page is one page of a paginated backend listing. PageNumber is 1-based.
type Page[T any] struct {
	Content       []T
	PageNumber    int
	PageSize      int
	TotalPages    int
	TotalElements int
}

// HasPrev reports whether a previous page exists
func (p Page[T]) HasPrev() bool {
	return p.PageNumber > 1
}

// HasNext reports whether a following page exists
func (p Page[T]) HasNext() bool {
	return p.PageNumber < p.TotalPages
}
