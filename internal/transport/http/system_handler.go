package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type SystemHandler struct {
	db DBClock
}

func NewSystemHandler(db DBClock) *SystemHandler {
	return &SystemHandler{db: db}
}

func (h *SystemHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Ewha quiz backend is running")
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// DBTest reports whether the database answers a trivial query.
func (h *SystemHandler) DBTest(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "database not configured"})
		return
	}
	now, err := h.db.Now(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("database check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "database connection failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection ok", "dbTime": now})
}
