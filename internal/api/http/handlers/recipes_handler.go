package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/recipe-book/recipe-book/internal/api/dto"
	"github.com/recipe-book/recipe-book/internal/auth"
	"github.com/recipe-book/recipe-book/internal/service"
	apperrors "github.com/recipe-book/recipe-book/pkg/util"
)

// RecipesHandler serves the /api/recipes/ endpoints.
type RecipesHandler struct {
	service *service.RecipeService
}

// NewRecipesHandler constructs handler.
func NewRecipesHandler(recipeService *service.RecipeService) *RecipesHandler {
	return &RecipesHandler{service: recipeService}
}

// GetRecipes GET /api/recipes/.
func (h *RecipesHandler) GetRecipes(c *fiber.Ctx) error {
	q, err := parseRecipeListQuery(c)
	if err != nil {
		return err
	}

	res, err := h.service.Query(c.UserContext(), service.RecipeQuery{
		SearchQuery: q.SearchQuery,
		ID:          q.ID,
		Random:      q.Random,
		Page:        q.Page,
		Size:        q.Size,
	})
	if err != nil {
		return err
	}
	if res.Single != nil {
		return c.JSON(res.Single)
	}
	return c.JSON(dto.NewPageResponse(res.List))
}

// CreateRecipe POST /api/recipes/.
func (h *RecipesHandler) CreateRecipe(c *fiber.Ctx) error {
	req, err := parseRecipeRequest(c)
	if err != nil {
		return err
	}
	view, err := h.service.Create(c.UserContext(), auth.OptionalUser(c), service.RecipeInput{
		Headling: req.Headling,
		Text:     req.Text,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(view)
}

// UpdateRecipe PUT /api/recipes/?id=.
func (h *RecipesHandler) UpdateRecipe(c *fiber.Ctx) error {
	id, err := requiredID(c)
	if err != nil {
		return err
	}
	req, err := parseRecipeRequest(c)
	if err != nil {
		return err
	}
	view, err := h.service.Update(c.UserContext(), auth.OptionalUser(c), id, service.RecipeInput{
		Headling: req.Headling,
		Text:     req.Text,
	})
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// DeleteRecipe DELETE /api/recipes/?id=.
func (h *RecipesHandler) DeleteRecipe(c *fiber.Ctx) error {
	id, err := requiredID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), auth.OptionalUser(c), id); err != nil {
		return err
	}
	return c.JSON(dto.StatusResponse{Status: service.MsgRecipeDeleted})
}

func parseRecipeRequest(c *fiber.Ctx) (dto.RecipeRequest, error) {
	var req dto.RecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", []string{"body must be a JSON object with headling and text"})
	}
	return req, nil
}

func parseRecipeListQuery(c *fiber.Ctx) (dto.RecipeListQuery, error) {
	q := dto.RecipeListQuery{
		SearchQuery: c.Query("search_query"),
		Page:        service.DefaultPage,
		Size:        service.DefaultPageSize,
	}
	var errs []string

	if raw := c.Query("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, "id must be an integer")
		}
		q.ID = id
	}
	if raw := c.Query("random"); raw != "" {
		random, ok := parseBool(raw)
		if !ok {
			errs = append(errs, "random must be a boolean")
		}
		q.Random = random
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			errs = append(errs, "page must be an integer greater than or equal to 1")
		}
		q.Page = page
	}
	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < service.MinPageSize || size > service.MaxPageSize {
			errs = append(errs, "size must be an integer between 1 and 30")
		}
		q.Size = size
	}

	if len(errs) > 0 {
		return q, apperrors.NewValidationError("invalid query parameters", errs)
	}
	return q, nil
}

func requiredID(c *fiber.Ctx) (int64, error) {
	raw := c.Query("id")
	if raw == "" {
		return 0, apperrors.NewValidationError("invalid query parameters", []string{"id is required"})
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid query parameters", []string{"id must be an integer"})
	}
	return id, nil
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true, true
	case "0", "false", "f", "no", "n", "off":
		return false, true
	}
	return false, false
}
