package dto

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

// NameValue is a single bar or pie slice.
type NameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Paginate slices items for page/limit. A non-positive limit returns
// everything on a single page.
func Paginate[T any](items []T, page, limit int) ([]T, PaginationMeta) {
	total := len(items)
	if limit <= 0 {
		return items, PaginationMeta{CurrentPage: 1, TotalPages: 1, TotalItems: int64(total), Limit: total}
	}
	if page < 1 {
		page = 1
	}

	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return items[start:end], PaginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  int64(total),
		Limit:       limit,
	}
}
