package dto

import (
	"encoding/json"

	"github.com/recipe-book/recipe-book/internal/domain"
)

// RecipeRequest is the body of create and update calls.
type RecipeRequest struct {
	Headling string `json:"headling" form:"headling"`
	Text     string `json:"text" form:"text"`
}

// RecipeListQuery captures GET /api/recipes/ parameters.
type RecipeListQuery struct {
	SearchQuery string
	ID          int64
	Random      bool
	Page        int
	Size        int
}

// PageResponse encodes a listing as the recipe views followed by the
// pagination summary, all in one JSON array.
type PageResponse struct {
	Items []domain.RecipeView
	Meta  domain.PageMeta
}

// NewPageResponse adapts a domain page.
func NewPageResponse(page *domain.Page) PageResponse {
	return PageResponse{Items: page.Items, Meta: page.Meta}
}

// MarshalJSON implements json.Marshaler.
func (p PageResponse) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(p.Items)+1)
	for _, item := range p.Items {
		out = append(out, item)
	}
	out = append(out, p.Meta)
	return json.Marshal(out)
}

// StatusResponse acknowledges an operation without a resource body.
type StatusResponse struct {
	Status string `json:"status"`
}
