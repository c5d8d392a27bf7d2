// Deal HTTP handlers.
//
// This file exposes REST endpoints for pipeline deals:
//   - GET    /deals               (list with resolved lookup names, sortable)
//   - POST   /deals               (create)
//   - GET    /deals/{id}          (fetch)
//   - PUT    /deals/{id}          (partial update)
//   - DELETE /deals/{id}          (delete)
//   - GET    /deals/check-name    (advisory name-uniqueness probe)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/services"
	"github.com/tbourn/go-crm-backend/internal/utils"
)

// CheckNameResponse reports whether a deal name is free.
type CheckNameResponse struct {
	Available bool `json:"available"`
}

// ListDeals godoc
// @ID          listDeals
// @Summary     List deals
// @Description Returns all pipeline deals with resolved stage and lookup names.
// @Tags        Deals
// @Produce     json
// @Security    BearerAuth
//
// @Param       sort   query  string  false "Sort key (close_date, stage, platform, product, partner, priority, color, or a column)"
// @Param       order  query  string  false "asc or desc" Enums(asc, desc)
//
// @Success     200  {array}   repo.DealWithNames
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /deals [get]
func (h *Handlers) ListDeals(c *gin.Context) {
	deals, err := h.deals.List(c.Request.Context(), c.Query("sort"), c.Query("order"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, deals)
}

// GetDeal godoc
// @ID          getDeal
// @Summary     Fetch a deal
// @Tags        Deals
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true "Deal ID"
//
// @Success     200  {object}  repo.DealWithNames
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Deal not found"
// @Router      /deals/{id} [get]
func (h *Handlers) GetDeal(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	d, err := h.deals.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrDealNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "deal not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, d)
}

// CreateDeal godoc
// @ID          createDeal
// @Summary     Create a deal
// @Description Creates a deal; omitted fields default to a fresh active deal opened today.
// @Tags        Deals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  services.DealInput  true "Deal payload (all fields optional)"
//
// @Success     201  {object}  repo.DealWithNames
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /deals [post]
func (h *Handlers) CreateDeal(c *gin.Context) {
	var in services.DealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	d, err := h.deals.Create(c.Request.Context(), in)
	if err != nil {
		failDealError(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, d)
}

// UpdateDeal godoc
// @ID          updateDeal
// @Summary     Update a deal
// @Description Merges the payload over the stored deal; omitted fields keep their value.
// @Tags        Deals
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int                 true "Deal ID"
// @Param       body  body  services.DealInput  true "Partial deal payload"
//
// @Success     200  {object}  repo.DealWithNames
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse "Deal not found"
// @Router      /deals/{id} [put]
func (h *Handlers) UpdateDeal(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var in services.DealInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	d, err := h.deals.Update(c.Request.Context(), id, in)
	if err != nil {
		failDealError(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, d)
}

// DeleteDeal godoc
// @ID          deleteDeal
// @Summary     Delete a deal
// @Tags        Deals
// @Security    BearerAuth
//
// @Param       id  path  int  true "Deal ID"
//
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Deal not found"
// @Router      /deals/{id} [delete]
func (h *Handlers) DeleteDeal(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := h.deals.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrDealNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "deal not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	noContent(c)
}

// CheckDealName godoc
// @ID          checkDealName
// @Summary     Check deal name availability
// @Description Advisory case-insensitive probe; creation never enforces uniqueness.
// @Tags        Deals
// @Produce     json
// @Security    BearerAuth
//
// @Param       name        query  string  true  "Candidate deal name"
// @Param       exclude_id  query  int     false "Deal ID to ignore (when renaming)"
//
// @Success     200  {object}  handlers.CheckNameResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Router      /deals/check-name [get]
func (h *Handlers) CheckDealName(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name query parameter is required")
		return
	}
	excludeID := utils.AtouDefault(c.Query("exclude_id"), 0)

	available, err := h.deals.CheckName(c.Request.Context(), name, excludeID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, CheckNameResponse{Available: available})
}

// failDealError maps deal service sentinels onto HTTP responses.
func failDealError(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrDealNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "deal not found")
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrCloseDateRequired),
		errors.Is(err, services.ErrDealValueRequired),
		errors.Is(err, services.ErrStageNotFound):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}
