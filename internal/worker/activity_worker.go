package worker

import (
	"github.com/recipe-book/recipe-book/internal/service"
)

// StartActivityWorker registers the recipe activity handlers.
func StartActivityWorker(activity *service.ActivityService) {
	if activity == nil {
		return
	}
	activity.RegisterHandlers()
}
