package domain

import (
	"math"
	"time"
	"unicode/utf8"
)

const (
	// PreviewTextLength is the number of characters kept in listing views.
	PreviewTextLength = 110

	HeadlingMinLength = 10
	HeadlingMaxLength = 50
	TextMinLength     = 10
)

// Recipe is a persisted recipe with its author's username joined in.
type Recipe struct {
	ID             int64
	Headling       string
	Text           string
	PubDate        time.Time
	AuthorID       int64
	AuthorUsername string
}

// RecipeView is the read projection returned to clients.
type RecipeView struct {
	ID       int64     `json:"id"`
	Headling string    `json:"headling"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
	Author   string    `json:"author"`
	AuthorID int64     `json:"-"`
}

// View projects the recipe. Unless fullText is set, text longer than
// PreviewTextLength characters is cut and suffixed with "...".
func (r *Recipe) View(fullText bool) RecipeView {
	text := r.Text
	if !fullText && utf8.RuneCountInString(text) > PreviewTextLength {
		text = string([]rune(text)[:PreviewTextLength]) + "..."
	}
	return RecipeView{
		ID:       r.ID,
		Headling: r.Headling,
		Text:     text,
		PubDate:  r.PubDate,
		Author:   r.AuthorUsername,
		AuthorID: r.AuthorID,
	}
}

// IsAuthor reports whether the user wrote the recipe.
func (r *Recipe) IsAuthor(user *User) bool {
	return user != nil && user.ID == r.AuthorID
}

// PageMeta is the pagination summary appended to listings.
type PageMeta struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// NewPageMeta computes the number of pages needed for matches items.
func NewPageMeta(page, size, matches int) PageMeta {
	total := 0
	if size > 0 {
		total = (matches + size - 1) / size
	}
	return PageMeta{Page: page, Size: size, Total: total}
}

// Offset returns the index of the first item on the page. Pages too far
// out to address saturate at math.MaxInt, which is past any listing.
func (m PageMeta) Offset() int {
	if m.Page <= 1 || m.Size <= 0 {
		return 0
	}
	if m.Page-1 > math.MaxInt/m.Size {
		return math.MaxInt
	}
	return (m.Page - 1) * m.Size
}

// Page is one slice of a listing.
type Page struct {
	Items []RecipeView
	Meta  PageMeta
}

// IsAuthor reports whether the user wrote the viewed recipe.
func (v RecipeView) IsAuthor(user *User) bool {
	return user != nil && user.ID == v.AuthorID
}
