// Lead HTTP handlers.
//
// Leads arrive from the public website contact form; everything else here is
// behind authentication. Triage moves a lead to converted (optionally linked
// to the deal it produced) or dismissed.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/services"
)

// LeadStatusRequest is the JSON payload for lead triage.
type LeadStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	ConvertedDealID *uint  `json:"converted_deal_id"`
}

// ListLeads godoc
// @ID          listLeads
// @Summary     List leads
// @Description Returns all leads, unprocessed first, newest within each group.
// @Tags        Leads
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.Lead
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /leads [get]
func (h *Handlers) ListLeads(c *gin.Context) {
	leads, err := h.leads.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, leads)
}

// CreateLead godoc
// @ID          createLead
// @Summary     Capture a lead
// @Description Public endpoint for the website contact form. Names are title-cased; the received date defaults to today.
// @Tags        Leads
// @Accept      json
// @Produce     json
//
// @Param       body  body  services.LeadInput  true "Lead payload"
//
// @Success     201  {object}  domain.Lead
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Router      /leads [post]
func (h *Handlers) CreateLead(c *gin.Context) {
	var in services.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	l, err := h.leads.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, l)
}

// UpdateLeadStatus godoc
// @ID          updateLeadStatus
// @Summary     Triage a lead
// @Description Marks a lead new, converted, or dismissed. A converted lead may link to the deal it produced.
// @Tags        Leads
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int                        true "Lead ID"
// @Param       body  body  handlers.LeadStatusRequest true "Status payload"
//
// @Success     200  {object}  domain.Lead
// @Failure     400  {object}  handlers.ErrorResponse "Unknown status or deal"
// @Failure     404  {object}  handlers.ErrorResponse "Lead not found"
// @Router      /leads/{id}/status [put]
func (h *Handlers) UpdateLeadStatus(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var req LeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status required")
		return
	}
	l, err := h.leads.UpdateStatus(c.Request.Context(), id, req.Status, req.ConvertedDealID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLeadNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "lead not found")
		case errors.Is(err, services.ErrInvalidLeadStatus), errors.Is(err, services.ErrDealNotFound):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, l)
}

// DeleteLead godoc
// @ID          deleteLead
// @Summary     Delete a lead
// @Tags        Leads
// @Security    BearerAuth
//
// @Param       id  path  int  true "Lead ID"
//
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Lead not found"
// @Router      /leads/{id} [delete]
func (h *Handlers) DeleteLead(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := h.leads.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrLeadNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "lead not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	noContent(c)
}
