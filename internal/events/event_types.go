package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRecipeCreated EventType = "recipe_created"
	EventRecipeUpdated EventType = "recipe_updated"
	EventRecipeDeleted EventType = "recipe_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	RecipeID  int64     `json:"recipe_id"`
	ActorID   int64     `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// RecipePayload describes the recipe after the change.
type RecipePayload struct {
	Headling string `json:"headling"`
	Author   string `json:"author"`
}
