// Month-close HTTP handlers.
//
// This file exposes the month-close engine:
//   - GET  /close-month/status   (dashboard state: prior month, days left, flash)
//   - POST /close-month          (run the close for the month that just ended)
//   - POST /update-prior-month   (recompute an already-closed snapshot)
//   - GET  /close-month/log      (append-only close ledger)
//   - GET  /snapshots            (monthly snapshots with breakdown rows)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/services"
)

// CloseMonthStatus godoc
// @ID          closeMonthStatus
// @Summary     Close-month dashboard state
// @Description Reports the prior month, whether it is closed, days remaining in the current month, and the end-of-month flash flag.
// @Tags        Close
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  services.CloseStatus
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /close-month/status [get]
func (h *Handlers) CloseMonthStatus(c *gin.Context) {
	st, err := h.closer.Status(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, st)
}

// CloseMonthRequest optionally overrides the trigger recorded in the close
// ledger. The dashboard posts an empty body, which records "manual".
type CloseMonthRequest struct {
	ClosedBy string `json:"closedBy" example:"manual"`
}

// CloseMonth godoc
// @ID          closeMonth
// @Summary     Close the prior month
// @Description Aggregates the weighted forecast, upserts the snapshot, archives won/lost deals, and appends the ledger entry. Idempotent: re-closing recomputes without duplicating.
// @Tags        Close
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       payload  body  handlers.CloseMonthRequest  false  "Optional close trigger"
//
// @Success     200  {object}  services.CloseResult
// @Failure     500  {object}  handlers.ErrorResponse "Close failed"
// @Router      /close-month [post]
func (h *Handlers) CloseMonth(c *gin.Context) {
	var req CloseMonthRequest
	// The body is optional; an empty or absent body means a manual close.
	_ = c.ShouldBindJSON(&req)
	closedBy := req.ClosedBy
	if closedBy == "" {
		closedBy = domain.ClosedByManual
	}

	res, err := h.closer.CloseMonth(c.Request.Context(), closedBy)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCloseFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

// UpdatePriorMonth godoc
// @ID          updatePriorMonth
// @Summary     Recompute the prior month's snapshot
// @Description Recalculates the prior month's forecast totals and breakdowns from the current pipeline. Fails when the month was never closed.
// @Tags        Close
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  services.UpdateResult
// @Failure     400  {object}  handlers.ErrorResponse "No snapshot for the prior month"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /update-prior-month [post]
func (h *Handlers) UpdatePriorMonth(c *gin.Context) {
	res, err := h.closer.UpdatePriorMonth(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoSnapshot) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}

// CloseMonthLog godoc
// @ID          closeMonthLog
// @Summary     Close ledger
// @Description Returns every recorded month close, newest first.
// @Tags        Close
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.CloseMonthLog
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /close-month/log [get]
func (h *Handlers) CloseMonthLog(c *gin.Context) {
	log, err := h.closer.Log(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, log)
}

// ListSnapshots godoc
// @ID          listSnapshots
// @Summary     List monthly snapshots
// @Description Returns all monthly forecast snapshots with their product and partner breakdown rows, newest first.
// @Tags        Close
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.MonthlySnapshot
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /snapshots [get]
func (h *Handlers) ListSnapshots(c *gin.Context) {
	snaps, err := h.closer.Snapshots(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, snaps)
}
