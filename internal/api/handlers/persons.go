package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/persondir/internal/listing"
	"github.com/your-org/persondir/internal/persons"
	"github.com/your-org/persondir/pkg/dto"
)

type PersonHandler struct {
	repo      *persons.Repository
	engine    *listing.Engine
	presenter *persons.Presenter
}

func NewPersonHandler(repo *persons.Repository, engine *listing.Engine, presenter *persons.Presenter) *PersonHandler {
	return &PersonHandler{repo: repo, engine: engine, presenter: presenter}
}

func (h *PersonHandler) List(c *gin.Context) {
	var q dto.PersonListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := listing.DefaultParams()
	params.Skip = q.Skip
	if q.PageSize != nil {
		params.PageSize = *q.PageSize
	}
	if q.SortBy != "" {
		params.SortBy = q.SortBy
	}
	if q.SortOrder != "" {
		params.SortOrder = q.SortOrder
	}

	page, err := h.engine.List(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *PersonHandler) Get(c *gin.Context) {
	person, err := h.repo.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presenter.ToResponse(c.Request.Context(), person))
}

func (h *PersonHandler) Create(c *gin.Context) {
	var req dto.PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	person, err := h.repo.Create(c.Request.Context(), toInput(req))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Location", "/api/person/"+person.ID.String())
	c.JSON(http.StatusCreated, h.presenter.ToResponse(c.Request.Context(), person))
}

func (h *PersonHandler) Update(c *gin.Context) {
	var req dto.PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	person, err := h.repo.Update(c.Request.Context(), c.Param("id"), toInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.presenter.ToResponse(c.Request.Context(), person))
}

func (h *PersonHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toInput(req dto.PersonRequest) persons.Input {
	return persons.Input{
		Username:       req.Username,
		CPR:            req.CPR,
		ProfilePicture: req.ProfilePicture,
	}
}
