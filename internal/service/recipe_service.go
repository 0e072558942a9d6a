package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/recipe-book/recipe-book/internal/domain"
	"github.com/recipe-book/recipe-book/internal/events"
	"github.com/recipe-book/recipe-book/internal/repository"
	"github.com/recipe-book/recipe-book/internal/validation"
	apperrors "github.com/recipe-book/recipe-book/pkg/util"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 12
	MinPageSize     = 1
	MaxPageSize     = 30

	// maxRandomAttempts bounds id sampling before falling back to an
	// offset pick, so gaps left by deletions cannot stall the request.
	maxRandomAttempts = 16
)

const (
	MsgRecipeNotFound  = "Recipe not found"
	MsgRecipesNotFound = "Recipes not found"
	MsgNotAuthor       = "You aren't an author of this recipe"
	MsgUnauthorized    = "Unauthorized"
	MsgRecipeDeleted   = "The recipe has been successfully deleted"
)

// RecipeQuery selects one of the query modes. SearchQuery wins over ID,
// ID over Random, and with none set the latest recipes are listed.
type RecipeQuery struct {
	SearchQuery string
	ID          int64
	Random      bool
	Page        int
	Size        int
}

// QueryResult holds exactly one of Single or List.
type QueryResult struct {
	Single *domain.RecipeView
	List   *domain.Page
}

// RecipeInput carries editable recipe fields.
type RecipeInput struct {
	Headling string
	Text     string
}

// RecipeService implements recipe retrieval and mutations.
type RecipeService struct {
	recipes    repository.RecipeRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	randInt    func(n int64) int64
	now        func() time.Time
}

// RecipeDependencies bundles collaborators for the recipe service.
type RecipeDependencies struct {
	RecipeRepo repository.RecipeRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// RandInt returns a uniform value in [0, n). Defaults to math/rand/v2.
	RandInt func(n int64) int64
	Now     func() time.Time
}

// NewRecipeService constructs the service.
func NewRecipeService(deps RecipeDependencies) *RecipeService {
	s := &RecipeService{
		recipes:    deps.RecipeRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		randInt:    deps.RandInt,
		now:        deps.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.randInt == nil {
		s.randInt = rand.Int64N
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Query dispatches to the mode selected by q.
func (s *RecipeService) Query(ctx context.Context, q RecipeQuery) (*QueryResult, error) {
	page, size, err := normalizePaging(q.Page, q.Size)
	if err != nil {
		return nil, err
	}

	switch {
	case q.SearchQuery != "":
		list, err := s.Search(ctx, q.SearchQuery, page, size)
		if err != nil {
			return nil, err
		}
		return &QueryResult{List: list}, nil
	case q.ID != 0:
		view, err := s.Get(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		return &QueryResult{Single: &view}, nil
	case q.Random:
		view, err := s.Random(ctx)
		if err != nil {
			return nil, err
		}
		return &QueryResult{Single: &view}, nil
	default:
		list, err := s.Latest(ctx, page, size)
		if err != nil {
			return nil, err
		}
		return &QueryResult{List: list}, nil
	}
}

// Get returns the full-text view of a single recipe. Every call reads the
// store so rows removed elsewhere report NotFound.
func (s *RecipeService) Get(ctx context.Context, id int64) (domain.RecipeView, error) {
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return domain.RecipeView{}, err
	}
	return recipe.View(true), nil
}

// Search lists recipes whose headling contains term.
func (s *RecipeService) Search(ctx context.Context, term string, page, size int) (*domain.Page, error) {
	filter := repository.RecipeFilter{SearchTerm: term, Order: repository.OrderByID}
	list, err := s.listPage(ctx, filter, page, size)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, apperrors.NewNotFound(fmt.Sprintf("Recipes for query '%s' not found", term))
	}
	return list, nil
}

// Latest lists recipes newest first.
func (s *RecipeService) Latest(ctx context.Context, page, size int) (*domain.Page, error) {
	filter := repository.RecipeFilter{Order: repository.OrderLatest}
	list, err := s.listPage(ctx, filter, page, size)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, apperrors.NewNotFound(MsgRecipesNotFound)
	}
	return list, nil
}

// Random picks a live recipe uniformly at random.
func (s *RecipeService) Random(ctx context.Context) (domain.RecipeView, error) {
	stats, err := s.recipes.Stats(ctx)
	if err != nil {
		return domain.RecipeView{}, fmt.Errorf("recipe stats: %w", err)
	}
	if stats.Count == 0 || stats.MaxID == 0 {
		return domain.RecipeView{}, apperrors.NewNotFound(MsgRecipesNotFound)
	}

	for attempt := 0; attempt < maxRandomAttempts; attempt++ {
		id := s.randInt(stats.MaxID) + 1
		recipe, err := s.recipes.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.RecipeView{}, fmt.Errorf("random recipe: %w", err)
		}
		return recipe.View(false), nil
	}

	recipe, err := s.recipes.GetNth(ctx, s.randInt(stats.Count))
	if errors.Is(err, repository.ErrNotFound) {
		// the table shrank between Stats and GetNth
		return domain.RecipeView{}, apperrors.NewNotFound(MsgRecipesNotFound)
	}
	if err != nil {
		return domain.RecipeView{}, fmt.Errorf("random recipe: %w", err)
	}
	return recipe.View(false), nil
}

// Create publishes a new recipe authored by actor.
func (s *RecipeService) Create(ctx context.Context, actor *domain.User, in RecipeInput) (domain.RecipeView, error) {
	if actor == nil {
		return domain.RecipeView{}, apperrors.NewUnauthorized(MsgUnauthorized)
	}
	if err := validateRecipeInput(in); err != nil {
		return domain.RecipeView{}, err
	}

	recipe := &domain.Recipe{
		Headling: in.Headling,
		Text:     in.Text,
		PubDate:  s.now().UTC(),
		AuthorID: actor.ID,
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return domain.RecipeView{}, fmt.Errorf("create recipe: %w", err)
	}
	if recipe.AuthorUsername == "" {
		recipe.AuthorUsername = actor.Username
	}

	s.publish(ctx, events.EventRecipeCreated, recipe, actor)
	return recipe.View(true), nil
}

// Update replaces headling and text. Existence is checked before the
// caller's identity, so unknown ids report NotFound even to anonymous callers.
func (s *RecipeService) Update(ctx context.Context, actor *domain.User, id int64, in RecipeInput) (domain.RecipeView, error) {
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return domain.RecipeView{}, err
	}
	if actor == nil {
		return domain.RecipeView{}, apperrors.NewUnauthorized(MsgUnauthorized)
	}
	if !recipe.IsAuthor(actor) {
		return domain.RecipeView{}, apperrors.NewForbidden(MsgNotAuthor)
	}
	if err := validateRecipeInput(in); err != nil {
		return domain.RecipeView{}, err
	}

	recipe.Headling = in.Headling
	recipe.Text = in.Text
	if err := s.recipes.Update(ctx, recipe); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.RecipeView{}, apperrors.NewNotFound(MsgRecipeNotFound)
		}
		return domain.RecipeView{}, fmt.Errorf("update recipe: %w", err)
	}

	refreshed, err := s.getRecipe(ctx, id)
	if err != nil {
		return domain.RecipeView{}, err
	}
	s.publish(ctx, events.EventRecipeUpdated, refreshed, actor)
	return refreshed.View(true), nil
}

// Delete removes a recipe owned by actor.
func (s *RecipeService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if actor == nil {
		return apperrors.NewUnauthorized(MsgUnauthorized)
	}
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return err
	}
	if !recipe.IsAuthor(actor) {
		return apperrors.NewForbidden(MsgNotAuthor)
	}

	if err := s.recipes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound(MsgRecipeNotFound)
		}
		return fmt.Errorf("delete recipe: %w", err)
	}

	s.publish(ctx, events.EventRecipeDeleted, recipe, actor)
	return nil
}

func (s *RecipeService) getRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(MsgRecipeNotFound)
		}
		return nil, fmt.Errorf("get recipe %d: %w", id, err)
	}
	return recipe, nil
}

// listPage returns nil when the filter matches nothing at all.
func (s *RecipeService) listPage(ctx context.Context, filter repository.RecipeFilter, page, size int) (*domain.Page, error) {
	page, size, err := normalizePaging(page, size)
	if err != nil {
		return nil, err
	}

	matches, err := s.recipes.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count recipes: %w", err)
	}
	if matches == 0 {
		return nil, nil
	}

	meta := domain.NewPageMeta(page, size, matches)
	items := []domain.RecipeView{}
	if meta.Offset() < matches {
		filter.Limit = size
		filter.Offset = meta.Offset()
		recipes, err := s.recipes.List(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("list recipes: %w", err)
		}
		items = make([]domain.RecipeView, 0, len(recipes))
		for i := range recipes {
			items = append(items, recipes[i].View(false))
		}
	}
	return &domain.Page{Items: items, Meta: meta}, nil
}

func (s *RecipeService) publish(ctx context.Context, eventType events.EventType, recipe *domain.Recipe, actor *domain.User) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		RecipeID:  recipe.ID,
		ActorID:   actor.ID,
		Timestamp: s.now().UTC(),
		Payload: events.RecipePayload{
			Headling: recipe.Headling,
			Author:   recipe.AuthorUsername,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)),
			zap.Int64("recipe_id", recipe.ID),
			zap.Error(err))
	}
}

func validateRecipeInput(in RecipeInput) error {
	if errs := validation.ValidateRecipe(in.Headling, in.Text); len(errs) > 0 {
		return apperrors.NewValidationError(errs[0], errs)
	}
	return nil
}

func normalizePaging(page, size int) (int, int, error) {
	if page == 0 {
		page = DefaultPage
	}
	if size == 0 {
		size = DefaultPageSize
	}
	var errs []string
	if page < 1 {
		errs = append(errs, "page must be greater than or equal to 1")
	}
	if size < MinPageSize || size > MaxPageSize {
		errs = append(errs, fmt.Sprintf("size must be between %d and %d", MinPageSize, MaxPageSize))
	}
	if len(errs) > 0 {
		return 0, 0, apperrors.NewValidationError(strings.Join(errs, "; "), errs)
	}
	return page, size, nil
}
