package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/recipe-book/recipe-book/internal/auth"
	"github.com/recipe-book/recipe-book/internal/domain"
	"github.com/recipe-book/recipe-book/internal/service"
	"github.com/recipe-book/recipe-book/internal/validation"
	"github.com/recipe-book/recipe-book/internal/web"
	apperrors "github.com/recipe-book/recipe-book/pkg/util"
)

const (
	msgNotAuthorized = "You aren't authorized"
	latestOnRecipe   = 3
)

// RecipeForm holds recipe form values for re-rendering.
type RecipeForm struct {
	Headling string `form:"headling"`
	Text     string `form:"text"`
}

// RegisterForm is the sign-up page form.
type RegisterForm struct {
	Username  string `form:"username"`
	Email     string `form:"email"`
	Password  string `form:"password"`
	Password1 string `form:"password1"`
}

// LoginForm is the login page form.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// PagesHandler renders the HTML site on top of the recipe and auth services.
type PagesHandler struct {
	recipes       *service.RecipeService
	auth          *service.AuthService
	authenticator *auth.Authenticator
	logger        *zap.Logger
}

// NewPagesHandler constructs handler.
func NewPagesHandler(recipes *service.RecipeService, authService *service.AuthService, authenticator *auth.Authenticator, logger *zap.Logger) *PagesHandler {
	return &PagesHandler{recipes: recipes, auth: authService, authenticator: authenticator, logger: logger}
}

// Index GET /.
func (h *PagesHandler) Index(c *fiber.Ctx) error {
	list, err := h.recipes.Latest(c.UserContext(), pageParam(c), service.DefaultPageSize)
	if err != nil && !isNotFound(err) {
		return err
	}
	data := h.data(c, fiber.Map{"PageBase": "/?"})
	setListing(data, list)
	return c.Render("index", data, web.BaseLayout)
}

// Search GET /search/.
func (h *PagesHandler) Search(c *fiber.Ctx) error {
	query := c.Query("search_query")
	data := h.data(c, fiber.Map{
		"Title":       "Search",
		"SearchQuery": query,
		"PageBase":    "/search/?search_query=" + url.QueryEscape(query) + "&",
	})
	if query != "" {
		list, err := h.recipes.Search(c.UserContext(), query, pageParam(c), service.DefaultPageSize)
		if err != nil && !isNotFound(err) {
			return err
		}
		setListing(data, list)
	}
	return c.Render("search", data, web.BaseLayout)
}

// Recipe GET /recipe/:id/.
func (h *PagesHandler) Recipe(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return h.notFound(c)
	}
	view, err := h.recipes.Get(c.UserContext(), int64(id))
	if err != nil {
		if isNotFound(err) {
			return h.notFound(c)
		}
		return err
	}

	latest, err := h.recipes.Latest(c.UserContext(), 1, latestOnRecipe)
	if err != nil && !isNotFound(err) {
		return err
	}
	data := h.data(c, fiber.Map{
		"Title":    view.Headling,
		"Recipe":   view,
		"IsAuthor": view.IsAuthor(auth.OptionalUser(c)),
	})
	setListing(data, latest)
	return c.Render("recipes/recipe", data, web.BaseLayout)
}

// Random GET /random/.
func (h *PagesHandler) Random(c *fiber.Ctx) error {
	view, err := h.recipes.Random(c.UserContext())
	if err != nil {
		if isNotFound(err) {
			return c.Redirect("/", http.StatusFound)
		}
		return err
	}
	return c.Redirect(recipeURL(view.ID), http.StatusFound)
}

// CreateForm GET /create/.
func (h *PagesHandler) CreateForm(c *fiber.Ctx) error {
	if auth.OptionalUser(c) == nil {
		return c.Redirect("/", http.StatusFound)
	}
	return c.Render("recipes/add-recipe", h.data(c, fiber.Map{"Title": "New recipe", "Form": RecipeForm{}}), web.BaseLayout)
}

// Create POST /create/.
func (h *PagesHandler) Create(c *fiber.Ctx) error {
	var form RecipeForm
	if err := h.parseForm(c, &form); err != nil {
		return err
	}
	user := auth.OptionalUser(c)

	var errs []string
	if user == nil {
		errs = append(errs, msgNotAuthorized)
	}
	errs = append(errs, validation.ValidateRecipe(form.Headling, form.Text)...)
	if len(errs) > 0 {
		return c.Render("recipes/add-recipe", h.data(c, fiber.Map{"Title": "New recipe", "Form": form, "Errors": errs}), web.BaseLayout)
	}

	view, err := h.recipes.Create(c.UserContext(), user, service.RecipeInput{Headling: form.Headling, Text: form.Text})
	if err != nil {
		return err
	}
	return c.Redirect(recipeURL(view.ID), http.StatusFound)
}

// UpdateForm GET /update/:id/.
func (h *PagesHandler) UpdateForm(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return h.notFound(c)
	}
	view, err := h.recipes.Get(c.UserContext(), int64(id))
	if err != nil {
		if isNotFound(err) {
			return h.notFound(c)
		}
		return err
	}
	if !view.IsAuthor(auth.OptionalUser(c)) {
		return c.Redirect("/", http.StatusFound)
	}
	return c.Render("recipes/update-recipe", h.data(c, fiber.Map{
		"Title":    "Edit recipe",
		"RecipeID": view.ID,
		"Form":     RecipeForm{Headling: view.Headling, Text: view.Text},
	}), web.BaseLayout)
}

// Update POST /update/:id/.
func (h *PagesHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return h.notFound(c)
	}
	var form RecipeForm
	if err := h.parseForm(c, &form); err != nil {
		return err
	}

	_, err = h.recipes.Update(c.UserContext(), auth.OptionalUser(c), int64(id), service.RecipeInput{Headling: form.Headling, Text: form.Text})
	switch {
	case err == nil:
		return c.Redirect(recipeURL(int64(id)), http.StatusFound)
	case isNotFound(err):
		return h.notFound(c)
	case apperrors.IsCode(err, "FORBIDDEN"):
		return c.Redirect("/", http.StatusFound)
	case apperrors.IsCode(err, "UNAUTHORIZED"):
		errs := append([]string{msgNotAuthorized}, validation.ValidateRecipe(form.Headling, form.Text)...)
		return h.renderUpdateErrors(c, id, form, errs)
	case apperrors.IsCode(err, "VALIDATION_FAILED"):
		return h.renderUpdateErrors(c, id, form, validationMessages(err))
	}
	return err
}

// Delete GET /delete/:id/.
func (h *PagesHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return h.notFound(c)
	}
	err = h.recipes.Delete(c.UserContext(), auth.OptionalUser(c), int64(id))
	switch {
	case err == nil:
		return c.Render("recipes/delete-recipe", h.data(c, fiber.Map{"Title": "Deleted"}), web.BaseLayout)
	case isNotFound(err):
		return h.notFound(c)
	case apperrors.IsCode(err, "FORBIDDEN"), apperrors.IsCode(err, "UNAUTHORIZED"):
		return c.Redirect("/", http.StatusFound)
	}
	return err
}

// RegisterForm GET /register/.
func (h *PagesHandler) RegisterForm(c *fiber.Ctx) error {
	return c.Render("auth/register", h.data(c, fiber.Map{"Title": "Register", "Form": RegisterForm{}}), web.BaseLayout)
}

// Register POST /register/. A successful sign-up logs the new user in.
func (h *PagesHandler) Register(c *fiber.Ctx) error {
	var form RegisterForm
	if err := h.parseForm(c, &form); err != nil {
		return err
	}

	var errs []string
	if auth.OptionalUser(c) != nil {
		errs = append(errs, validation.MsgAlreadyAuthorized)
	}
	errs = append(errs, validation.ValidateRegistration(validation.Registration{
		Username:        form.Username,
		Email:           form.Email,
		Password:        form.Password,
		PasswordConfirm: form.Password1,
	})...)
	if len(errs) == 0 {
		_, err := h.auth.Register(c.UserContext(), service.RegisterInput{
			Username: form.Username,
			Email:    form.Email,
			Password: form.Password,
		})
		switch {
		case apperrors.IsCode(err, service.CodeUserAlreadyExists):
			errs = append(errs, service.MsgUserAlreadyExists)
		case apperrors.IsCode(err, "VALIDATION_FAILED"):
			errs = append(errs, validationMessages(err)...)
		case err != nil:
			return err
		}
	}
	if len(errs) > 0 {
		form.Password, form.Password1 = "", ""
		return c.Render("auth/register", h.data(c, fiber.Map{"Title": "Register", "Form": form, "Errors": errs}), web.BaseLayout)
	}
	password := form.Password
	form.Password, form.Password1 = "", ""
	return h.login(c, form.Email, password, "auth/register", form)
}

// LoginForm GET /login/.
func (h *PagesHandler) LoginForm(c *fiber.Ctx) error {
	return c.Render("auth/login", h.data(c, fiber.Map{"Title": "Login", "Form": LoginForm{}}), web.BaseLayout)
}

// Login POST /login/.
func (h *PagesHandler) Login(c *fiber.Ctx) error {
	var form LoginForm
	if err := h.parseForm(c, &form); err != nil {
		return err
	}

	var errs []string
	if auth.OptionalUser(c) != nil {
		errs = append(errs, validation.MsgAlreadyAuthorized)
	}
	errs = append(errs, validation.ValidateLogin(form.Email, form.Password)...)
	password := form.Password
	form.Password = ""
	if len(errs) > 0 {
		return c.Render("auth/login", h.data(c, fiber.Map{"Title": "Login", "Form": form, "Errors": errs}), web.BaseLayout)
	}
	return h.login(c, form.Email, password, "auth/login", form)
}

// Logout GET /logout/.
func (h *PagesHandler) Logout(c *fiber.Ctx) error {
	if auth.OptionalUser(c) == nil {
		return c.Redirect("/", http.StatusFound)
	}
	h.authenticator.ClearSession(c)
	return c.Render("auth/logout", fiber.Map{
		"Title":       "Logout",
		"User":        nil,
		"SearchQuery": "",
		"Errors":      nil,
	}, web.BaseLayout)
}

func (h *PagesHandler) login(c *fiber.Ctx, email, password, template string, form any) error {
	res, err := h.auth.Login(c.UserContext(), email, password)
	if err != nil {
		if apperrors.IsCode(err, service.CodeBadCredentials) {
			return c.Render(template, h.data(c, fiber.Map{"Form": form, "Errors": []string{service.MsgInvalidCredentials}}), web.BaseLayout)
		}
		return err
	}
	h.authenticator.SetSession(c, res.Token, res.Session)
	h.logger.Debug("user logged in", zap.Int64("user_id", res.User.ID))
	return c.Redirect("/", http.StatusFound)
}

func (h *PagesHandler) renderUpdateErrors(c *fiber.Ctx, id int, form RecipeForm, errs []string) error {
	return c.Render("recipes/update-recipe", h.data(c, fiber.Map{
		"Title":    "Edit recipe",
		"RecipeID": id,
		"Form":     form,
		"Errors":   errs,
	}), web.BaseLayout)
}

// parseForm rejects bodies that are not form encoded.
func (h *PagesHandler) parseForm(c *fiber.Ctx, form any) error {
	if err := c.BodyParser(form); err != nil {
		h.logger.Debug("form body rejected",
			zap.String("path", c.Path()),
			zap.String("content_type", c.Get(fiber.HeaderContentType)),
			zap.Error(err))
		return apperrors.NewValidationError("invalid form body", []string{"body must be form encoded"})
	}
	return nil
}

func (h *PagesHandler) notFound(c *fiber.Ctx) error {
	return c.Status(http.StatusNotFound).Render("404", h.data(c, fiber.Map{"Title": "Not found"}), web.BaseLayout)
}

// data fills the keys every layout expects.
func (h *PagesHandler) data(c *fiber.Ctx, extra fiber.Map) fiber.Map {
	data := fiber.Map{
		"Title":       "",
		"User":        auth.OptionalUser(c),
		"SearchQuery": "",
		"Errors":      nil,
		"Recipes":     nil,
		"Meta":        nil,
		"PageBase":    "/?",
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func setListing(data fiber.Map, list *domain.Page) {
	if list == nil {
		return
	}
	meta := list.Meta
	data["Recipes"] = list.Items
	data["Meta"] = &meta
}

func pageParam(c *fiber.Ctx) int {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func recipeURL(id int64) string {
	return fmt.Sprintf("/recipe/%d/", id)
}

func isNotFound(err error) bool {
	return apperrors.IsCode(err, "NOT_FOUND")
}

func validationMessages(err error) []string {
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		return nil
	}
	if msgs, ok := domainErr.Details["errors"].([]string); ok {
		return msgs
	}
	return []string{domainErr.Message}
}
