package http

import (
	"net/http"

	"ewha-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSHandler streams leaderboard snapshots over a websocket.
type WSHandler struct {
	feed     LeaderboardSubscriber
	upgrader websocket.Upgrader
}

func NewWSHandler(feed LeaderboardSubscriber) *WSHandler {
	return &WSHandler{
		feed: feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS sends the current leaderboard on connect and again after every new
// submission. Client messages are ignored; reading only detects disconnects.
func (h *WSHandler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel, err := h.feed.Subscribe(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("leaderboard subscribe failed")
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: internalErrorMessage}})
		return
	}
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// this goroutine is the only writer on conn
	for {
		select {
		case entries, ok := <-updates:
			if !ok {
				return
			}
			msg := outboundMessage[[]domain.LeaderboardEntry]{Type: "leaderboard", Payload: entries}
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug().Err(err).Msg("ws write error")
				return
			}
		case <-closed:
			return
		}
	}
}
