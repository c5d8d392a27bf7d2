// Stage and lookup-list HTTP handlers.
//
// Stages drive the weighted forecast (probability percent); the generic lists
// (partner, platform, product, source) back the deal lookup columns. Deleting
// either detaches referencing deals instead of failing.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
	"github.com/tbourn/go-crm-backend/internal/services"
)

// StageRequest is the JSON payload for creating or updating a stage.
type StageRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	Probability int    `json:"probability" binding:"min=0,max=100"`
	SortOrder   int    `json:"sort_order"`
}

// ListItemRequest is the JSON payload for creating or updating a lookup item.
type ListItemRequest struct {
	Value     string `json:"value" binding:"required,min=1,max=255"`
	SortOrder int    `json:"sort_order"`
}

// ListStages godoc
// @ID          listStages
// @Summary     List pipeline stages
// @Tags        Lookups
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.Stage
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /stages [get]
func (h *Handlers) ListStages(c *gin.Context) {
	stages, err := h.lookups.Stages(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, stages)
}

// CreateStage godoc
// @ID          createStage
// @Summary     Create a pipeline stage
// @Tags        Lookups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.StageRequest  true "Stage payload"
//
// @Success     201  {object}  domain.Stage
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Router      /stages [post]
func (h *Handlers) CreateStage(c *gin.Context) {
	var req StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required; probability must be 0-100")
		return
	}
	st := domain.Stage{Name: strings.TrimSpace(req.Name), Probability: req.Probability, SortOrder: req.SortOrder}
	if err := h.lookups.CreateStage(c.Request.Context(), &st); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, st)
}

// UpdateStage godoc
// @ID          updateStage
// @Summary     Update a pipeline stage
// @Tags        Lookups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int                    true "Stage ID"
// @Param       body  body  handlers.StageRequest  true "Stage payload"
//
// @Success     200  {object}  domain.Stage
// @Failure     404  {object}  handlers.ErrorResponse "Stage not found"
// @Router      /stages/{id} [put]
func (h *Handlers) UpdateStage(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required; probability must be 0-100")
		return
	}
	st := domain.Stage{ID: id, Name: strings.TrimSpace(req.Name), Probability: req.Probability, SortOrder: req.SortOrder}
	if err := h.lookups.UpdateStage(c.Request.Context(), &st); err != nil {
		if errors.Is(err, services.ErrStageNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "stage not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, st)
}

// DeleteStage godoc
// @ID          deleteStage
// @Summary     Delete a pipeline stage
// @Description Deals on the stage are detached, not deleted.
// @Tags        Lookups
// @Security    BearerAuth
//
// @Param       id  path  int  true "Stage ID"
//
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Stage not found"
// @Router      /stages/{id} [delete]
func (h *Handlers) DeleteStage(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := h.lookups.DeleteStage(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrStageNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "stage not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	noContent(c)
}

// ListItems godoc
// @ID          listItems
// @Summary     List lookup items
// @Description Returns the items of one lookup list (partner, platform, product, source).
// @Tags        Lookups
// @Produce     json
// @Security    BearerAuth
//
// @Param       type  path  string  true "List type" Enums(partner, platform, product, source)
//
// @Success     200  {array}   domain.ListItem
// @Failure     400  {object}  handlers.ErrorResponse "Unknown list type"
// @Router      /lists/{type} [get]
func (h *Handlers) ListItems(c *gin.Context) {
	items, err := h.lookups.Items(c.Request.Context(), c.Param("type"))
	if err != nil {
		failLookupError(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, items)
}

// CreateItem godoc
// @ID          createItem
// @Summary     Create a lookup item
// @Tags        Lookups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       type  path  string                    true "List type" Enums(partner, platform, product, source)
// @Param       body  body  handlers.ListItemRequest  true "Item payload"
//
// @Success     201  {object}  domain.ListItem
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Router      /lists/{type} [post]
func (h *Handlers) CreateItem(c *gin.Context) {
	var req ListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "value required (1-255 chars)")
		return
	}
	item, err := h.lookups.CreateItem(c.Request.Context(), c.Param("type"), strings.TrimSpace(req.Value), req.SortOrder)
	if err != nil {
		failLookupError(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, item)
}

// UpdateItem godoc
// @ID          updateItem
// @Summary     Update a lookup item
// @Tags        Lookups
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       type  path  string                    true "List type" Enums(partner, platform, product, source)
// @Param       id    path  int                       true "Item ID"
// @Param       body  body  handlers.ListItemRequest  true "Item payload"
//
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Item not found"
// @Router      /lists/{type}/{id} [put]
func (h *Handlers) UpdateItem(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req ListItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "value required (1-255 chars)")
		return
	}
	if err := h.lookups.UpdateItem(c.Request.Context(), c.Param("type"), id, strings.TrimSpace(req.Value), req.SortOrder); err != nil {
		failLookupError(c, err, ErrCodeUpdateFailed)
		return
	}
	noContent(c)
}

// DeleteItem godoc
// @ID          deleteItem
// @Summary     Delete a lookup item
// @Description Deals referencing the item are detached, not deleted.
// @Tags        Lookups
// @Security    BearerAuth
//
// @Param       type  path  string  true "List type" Enums(partner, platform, product, source)
// @Param       id    path  int     true "Item ID"
//
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Item not found"
// @Router      /lists/{type}/{id} [delete]
func (h *Handlers) DeleteItem(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := h.lookups.DeleteItem(c.Request.Context(), c.Param("type"), id); err != nil {
		failLookupError(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}

// failLookupError maps lookup service errors onto HTTP responses.
func failLookupError(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrInvalidListType):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, repo.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "item not found")
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}
