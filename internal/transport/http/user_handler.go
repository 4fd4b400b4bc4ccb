package http

import (
	"errors"
	"net/http"

	"ewha-quiz-service/internal/app"
	"ewha-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	verifiedPage = `<h1>Your email has been verified!</h1><p>You can now log in.</p>`
	invalidPage  = `<h1>This verification link is invalid or has expired.</h1>`
)

type UserHandler struct {
	auth AuthUseCases
}

func NewUserHandler(auth AuthUseCases) *UserHandler {
	return &UserHandler{auth: auth}
}

func (h *UserHandler) Register(c *gin.Context) {
	var input app.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.auth.Register(c.Request.Context(), input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registered, check your email to activate the account"})
}

// Verify is opened from the mailed link, so it answers with HTML.
func (h *UserHandler) Verify(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(invalidPage))
		return
	}
	if err := h.auth.Verify(c.Request.Context(), token); err != nil {
		if !errors.Is(err, domain.ErrInvalidToken) {
			log.Error().Err(err).Msg("verify email")
			c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(`<h1>Server error</h1>`))
			return
		}
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8", []byte(invalidPage))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(verifiedPage))
}

func (h *UserHandler) Login(c *gin.Context) {
	var input app.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	token, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
