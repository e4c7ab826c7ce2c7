package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"
)

const (
	activityExchange   = "activity_exchange"
	activityQueue      = "activity_queue"
	activityRoutingKey = "activity"
)

// ActivityBroadcaster delivers activities to live subscribers.
type ActivityBroadcaster interface {
	BroadcastActivity(activity model.Activity)
}

// ActivityService fans committed engagement events out to live listeners.
type ActivityService interface {
	Publish(ctx context.Context, activity model.Activity)
}

type activityService struct {
	rabbitMQ *util.RabbitMQClient
	hub      ActivityBroadcaster
}

// NewActivityService publishes through RabbitMQ when available and straight
// to the hub otherwise. Both arguments may be nil.
func NewActivityService(rabbitMQ *util.RabbitMQClient, hub ActivityBroadcaster) ActivityService {
	s := &activityService{rabbitMQ: rabbitMQ, hub: hub}
	if rabbitMQ != nil {
		if err := rabbitMQ.DeclareDirect(activityExchange, activityQueue, activityRoutingKey); err != nil {
			log.Printf("Warning: failed to declare activity exchange: %v. Falling back to direct delivery.", err)
			s.rabbitMQ = nil
		}
	}
	return s
}

// Publish never fails the caller; the ledger write has already committed.
func (s *activityService) Publish(ctx context.Context, activity model.Activity) {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	if s.rabbitMQ != nil {
		body, err := json.Marshal(activity)
		if err == nil {
			pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			err = s.rabbitMQ.Publish(pubCtx, activityExchange, activityRoutingKey, body)
			cancel()
		}
		if err == nil {
			return
		}
		log.Printf("Warning: failed to publish activity to RabbitMQ: %v", err)
	}

	if s.hub != nil {
		s.hub.BroadcastActivity(activity)
	}
}
