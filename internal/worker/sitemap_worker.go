package worker

import (
	"github.com/spec-kit/cms-admin/internal/events"
	"github.com/spec-kit/cms-admin/internal/service"
)

// StartSitemapWorker subscribes sitemap cache invalidation to content events.
func StartSitemapWorker(dispatcher events.Dispatcher, sitemap *service.SitemapService) {
	if dispatcher == nil || sitemap == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventContentCreated,
		events.EventContentUpdated,
		events.EventContentDeleted,
	} {
		dispatcher.Subscribe(eventType, sitemap.HandleContentEvent)
	}
}
