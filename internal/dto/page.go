package dto

import "github.com/yukikurage/hoc-admin-api/internal/utils"

// Page is a paginated listing.
type Page[T any] struct {
	Data       []T                      `json:"data"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

func NewPage[T any](items []T, params utils.PaginationParams, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Data: items, Pagination: params.Response(total)}
}
