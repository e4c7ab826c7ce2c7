package websocket

import (
	"log"
	"net/http"
	"strings"

	"github.com/kamruz-zzaman/portfolio-v2/internal/model"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"

	"github.com/gorilla/websocket"
)

// NewUpgrader accepts connections from the allowed origins. An empty list
// accepts any origin.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
}

// ServeWS subscribes the connection to ?topic=. Post topics are public; the
// dashboard topic requires an admin token.
func ServeWS(hub *Hub, jwtSecret string, upgrader *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := r.URL.Query().Get("topic")
		if !ValidTopic(topic) {
			http.Error(w, "Invalid topic", http.StatusBadRequest)
			return
		}

		token := r.URL.Query().Get("token")
		if token == "" {
			authHeader := r.Header.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}

		var claims *util.Claims
		if token != "" {
			var err error
			claims, err = util.ValidateToken(token, jwtSecret)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
		}

		if topic == TopicDashboard {
			if claims == nil {
				http.Error(w, "Authorization token required", http.StatusUnauthorized)
				return
			}
			if claims.Role != model.RoleAdmin {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}

		userID := ""
		if claims != nil {
			userID = claims.UserID
		}
		client := NewClient(hub, conn, topic, userID)
		select {
		case hub.register <- client:
		case <-hub.done:
			conn.Close()
			return
		}

		go client.Start()
	}
}
