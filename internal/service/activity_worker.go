package service

import (
	"encoding/json"
	"errors"
	"log"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ActivityWorker consumes activity messages from RabbitMQ and pushes them to
// the websocket hub
type ActivityWorker struct {
	rabbitMQ *util.RabbitMQClient
	hub      ActivityBroadcaster
	stopChan chan struct{}
}

func NewActivityWorker(rabbitMQ *util.RabbitMQClient, hub ActivityBroadcaster) *ActivityWorker {
	return &ActivityWorker{
		rabbitMQ: rabbitMQ,
		hub:      hub,
		stopChan: make(chan struct{}),
	}
}

// Start declares the queue and begins consuming in a goroutine
func (w *ActivityWorker) Start() error {
	if w.rabbitMQ == nil {
		return errors.New("rabbitmq not available")
	}

	if err := w.rabbitMQ.DeclareDirect(activityExchange, activityQueue, activityRoutingKey); err != nil {
		return err
	}

	channel := w.rabbitMQ.GetChannel()
	if channel == nil {
		return errors.New("rabbitmq channel closed")
	}

	msgs, err := channel.Consume(
		activityQueue,
		"activity_worker",
		false, // auto-ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	go func() {
		log.Println("Activity worker started, consuming messages...")
		for {
			select {
			case <-w.stopChan:
				log.Println("Activity worker stopped")
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Println("Activity queue closed")
					return
				}
				if err := w.handle(msg); err != nil {
					// Malformed payloads are dropped rather than requeued forever.
					log.Printf("Error processing activity message: %v", err)
					msg.Nack(false, false)
				} else {
					msg.Ack(false)
				}
			}
		}
	}()

	return nil
}

func (w *ActivityWorker) handle(msg amqp.Delivery) error {
	var activity model.Activity
	if err := json.Unmarshal(msg.Body, &activity); err != nil {
		return err
	}
	if w.hub != nil {
		w.hub.BroadcastActivity(activity)
	}
	return nil
}

// Stop stops the activity worker
func (w *ActivityWorker) Stop() {
	close(w.stopChan)
}
