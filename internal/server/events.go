package server

import (
	"context"
	"encoding/json"
	"log"

	"inkwell/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventPostCreated         = "post_created"
	EventPostReactionUpdated = "post_reaction_updated"
	EventCommentCreated      = "comment_created"
)

// publishBroadcastEvent publishes an event to the broadcast channel.
// Delivery is best effort; a publish failure never fails the request.
func (s *Server) publishBroadcastEvent(eventType string, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	if err := s.notifier.PublishBroadcast(context.Background(), string(eventJSON)); err != nil {
		log.Printf("failed to publish %s broadcast event: %v", eventType, err)
		return
	}
	observability.EventsPublished.WithLabelValues(eventType).Inc()
}

// publishPostEvent publishes an event to a single post's channel.
func (s *Server) publishPostEvent(postID uint, eventType string, payload map[string]interface{}) {
	if s.notifier == nil {
		return
	}
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", eventType, err)
		return
	}
	if err := s.notifier.PublishPost(context.Background(), postID, string(eventJSON)); err != nil {
		log.Printf("failed to publish %s event for post %d: %v", eventType, postID, err)
		return
	}
	observability.EventsPublished.WithLabelValues(eventType).Inc()
}
