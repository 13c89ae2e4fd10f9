package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/persondir/internal/friends"
	"github.com/your-org/persondir/internal/persons"
)

type FriendHandler struct {
	graph     *friends.Manager
	presenter *persons.Presenter
}

func NewFriendHandler(graph *friends.Manager, presenter *persons.Presenter) *FriendHandler {
	return &FriendHandler{graph: graph, presenter: presenter}
}

func (h *FriendHandler) Add(c *gin.Context) {
	person, err := h.graph.AddFriend(c.Request.Context(), c.Param("id"), c.Param("friendId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presenter.ToResponse(c.Request.Context(), person))
}

func (h *FriendHandler) Remove(c *gin.Context) {
	person, err := h.graph.RemoveFriend(c.Request.Context(), c.Param("id"), c.Param("friendId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presenter.ToResponse(c.Request.Context(), person))
}

// Repair runs one friend graph repair pass and reports what changed.
func (h *FriendHandler) Repair(c *gin.Context) {
	report, err := h.graph.Repair(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
