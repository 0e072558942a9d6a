package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipe-book/recipe-book/internal/domain"
)

func TestPageResponseShape(t *testing.T) {
	page := &domain.Page{
		Items: []domain.RecipeView{{ID: 1, Headling: "Garlic bread", Text: "Toast it", PubDate: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Author: "chef"}},
		Meta:  domain.PageMeta{Page: 1, Size: 12, Total: 1},
	}

	raw, err := json.Marshal(NewPageResponse(page))
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"headling":"Garlic bread","text":"Toast it","pub_date":"2024-01-02T03:04:05Z","author":"chef"},
		{"page":1,"size":12,"total":1}
	]`, string(raw))

	raw, err = json.Marshal(NewPageResponse(&domain.Page{Meta: domain.PageMeta{Page: 3, Size: 12, Total: 1}}))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"page":3,"size":12,"total":1}]`, string(raw))
}
