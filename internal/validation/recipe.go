// Package validation holds the field rules shared by the API and the HTML pages.
package validation

import (
	"unicode/utf8"

	"github.com/recipe-book/recipe-book/internal/domain"
)

const (
	MsgHeadlingRequired = "Headling field is required"
	MsgTextRequired     = "Text field is required"
	MsgHeadlingTooShort = "Headling is too short (less than 10 characters)"
	MsgHeadlingTooLong  = "Headling is too long (more than 50 characters)"
	MsgTextTooShort     = "Text is too short (less than 10 characters)"
)

// ValidateRecipe checks recipe fields and reports only the first violated
// rule, so the result holds at most one message.
func ValidateRecipe(headling, text string) []string {
	headlingLen := utf8.RuneCountInString(headling)

	switch {
	case headling == "":
		return []string{MsgHeadlingRequired}
	case text == "":
		return []string{MsgTextRequired}
	case headlingLen < domain.HeadlingMinLength:
		return []string{MsgHeadlingTooShort}
	case headlingLen > domain.HeadlingMaxLength:
		return []string{MsgHeadlingTooLong}
	case utf8.RuneCountInString(text) < domain.TextMinLength:
		return []string{MsgTextTooShort}
	}
	return nil
}
