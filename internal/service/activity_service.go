package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/recipe-book/recipe-book/internal/events"
)

// ActivityService records recipe lifecycle events in the log.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventRecipeCreated, a.handle)
	a.dispatcher.Subscribe(events.EventRecipeUpdated, a.handle)
	a.dispatcher.Subscribe(events.EventRecipeDeleted, a.handle)
}

func (a *ActivityService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("recipe_id", event.RecipeID),
		zap.Int64("actor_id", event.ActorID),
	}
	if payload, ok := event.Payload.(events.RecipePayload); ok {
		fields = append(fields, zap.String("headling", payload.Headling), zap.String("author", payload.Author))
	}
	a.logger.Info("recipe activity", fields...)
	return nil
}
