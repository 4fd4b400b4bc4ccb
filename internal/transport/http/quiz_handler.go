package http

import (
	"net/http"

	"ewha-quiz-service/internal/app"
	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	quiz QuizUseCases
}

func NewQuizHandler(quiz QuizUseCases) *QuizHandler {
	return &QuizHandler{quiz: quiz}
}

func (h *QuizHandler) Questions(c *gin.Context) {
	hints, err := h.quiz.Questions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hints)
}

func (h *QuizHandler) Submit(c *gin.Context) {
	var input app.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.quiz.Submit(c.Request.Context(), c.GetInt64(userIDKey), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
