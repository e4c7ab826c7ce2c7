package websocket

import (
	"log"
	"strings"
	"sync"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
)

const (
	// TopicDashboard receives every activity. Admins only.
	TopicDashboard = "dashboard"
	// topicPostPrefix + post ID receives live counter updates for one post.
	topicPostPrefix = "post:"
)

// PostTopic returns the topic for one post's live updates.
func PostTopic(postID string) string {
	return topicPostPrefix + postID
}

// ValidTopic reports whether topic names a known channel.
func ValidTopic(topic string) bool {
	if topic == TopicDashboard {
		return true
	}
	return strings.HasPrefix(topic, topicPostPrefix) && len(topic) > len(topicPostPrefix)
}

// Hub maintains the set of active clients per topic and fans messages out
type Hub struct {
	// Registered clients by topic
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// Message is one frame sent to subscribers of Topic.
type Message struct {
	Topic   string      `json:"topic"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for topic, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, topic)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Topic] == nil {
				h.clients[client.Topic] = make(map[*Client]bool)
			}
			h.clients[client.Topic][client] = true
			h.mu.Unlock()
			log.Printf("Client subscribed: topic=%s user=%s", client.Topic, client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[message.Topic] {
				select {
				case client.send <- message:
				default:
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.Topic]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.send)
		if len(clients) == 0 {
			delete(h.clients, client.Topic)
		}
	}
}

// Stop terminates Run and closes every client.
func (h *Hub) Stop() {
	close(h.done)
}

// Publish queues a message for one topic.
func (h *Hub) Publish(topic, msgType string, payload interface{}) {
	select {
	case h.broadcast <- &Message{Topic: topic, Type: msgType, Payload: payload}:
	default:
		log.Printf("Broadcast channel full, dropping %s message for topic: %s", msgType, topic)
	}
}

// BroadcastActivity sends the full activity to the dashboard and a public
// projection without user identity to the post's topic.
func (h *Hub) BroadcastActivity(activity model.Activity) {
	h.Publish(TopicDashboard, activity.Type, activity)

	if activity.PostID == "" {
		return
	}
	h.Publish(PostTopic(activity.PostID), activity.Type, map[string]interface{}{
		"postId":    activity.PostID,
		"commentId": activity.CommentID,
		"action":    activity.Action,
		"counters":  activity.Counters,
	})
}

// ClientCount returns the number of subscribers of topic.
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}
