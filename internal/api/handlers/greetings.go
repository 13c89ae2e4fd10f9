package handlers

import (
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/persondir/pkg/dto"
)

var greetingTemplates = []string{
	"Hello, %s! Welcome to the Greetings API",
	"Hi %s, glad you're here!",
	"Hey %s! Hope you're having a great day",
	"Greetings %s, thanks for stopping by",
	"Welcome %s! Enjoy the API",
}

type GreetingsHandler struct {
	pick func(n int) int
}

func NewGreetingsHandler() *GreetingsHandler {
	return &GreetingsHandler{pick: rand.IntN}
}

func (h *GreetingsHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, dto.GreetingResponse{Message: "Hello! Welcome to the Greetings API"})
}

func (h *GreetingsHandler) Greet(c *gin.Context) {
	tmpl := greetingTemplates[h.pick(len(greetingTemplates))]
	c.JSON(http.StatusOK, dto.GreetingResponse{Message: fmt.Sprintf(tmpl, c.Param("name"))})
}
