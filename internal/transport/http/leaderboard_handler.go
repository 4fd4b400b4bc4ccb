package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type LeaderboardHandler struct {
	leaderboard LeaderboardReader
}

func NewLeaderboardHandler(leaderboard LeaderboardReader) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// GetLeaderboard returns the top 100 users, best first. An empty board is [].
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.leaderboard.Leaderboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
