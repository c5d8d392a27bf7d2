// Archived-deal HTTP handlers.
//
// The month-close archiver is the normal producer of archive rows; these
// endpoints cover everything else: browsing by outcome, historical imports,
// corrections, deletion, and restoring a deal into the active pipeline.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/services"
)

// ListArchivedDeals godoc
// @ID          listArchivedDeals
// @Summary     List archived deals
// @Description Returns archived deals with the given terminal outcome, newest close first.
// @Tags        Archive
// @Produce     json
// @Security    BearerAuth
//
// @Param       status  query  string  true "Outcome" Enums(won, lost)
//
// @Success     200  {array}   domain.ArchivedDeal
// @Failure     400  {object}  handlers.ErrorResponse "Unknown status"
// @Router      /archived-deals [get]
func (h *Handlers) ListArchivedDeals(c *gin.Context) {
	deals, err := h.archive.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		failArchiveError(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, deals)
}

// ImportArchivedDeal godoc
// @ID          importArchivedDeal
// @Summary     Import an archived deal
// @Description Inserts an archive row directly, bypassing the close engine. Used to backfill historical outcomes.
// @Tags        Archive
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  services.ArchiveInput  true "Archive payload (deal_name, status, archived_for tags required)"
//
// @Success     201  {object}  domain.ArchivedDeal
// @Failure     400  {object}  handlers.ErrorResponse "Validation failed"
// @Router      /archived-deals [post]
func (h *Handlers) ImportArchivedDeal(c *gin.Context) {
	var in services.ArchiveInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	a, err := h.archive.Import(c.Request.Context(), in)
	if err != nil {
		failArchiveError(c, err, ErrCodeCreateFailed)
		return
	}
	ok(c, http.StatusCreated, a)
}

// UpdateArchivedDeal godoc
// @ID          updateArchivedDeal
// @Summary     Update an archived deal
// @Description Merges the payload over the stored archive row; omitted fields keep their value.
// @Tags        Archive
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int                    true "Archived deal ID"
// @Param       body  body  services.ArchiveInput  true "Partial archive payload"
//
// @Success     200  {object}  domain.ArchivedDeal
// @Failure     404  {object}  handlers.ErrorResponse "Archived deal not found"
// @Router      /archived-deals/{id} [put]
func (h *Handlers) UpdateArchivedDeal(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	var in services.ArchiveInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	a, err := h.archive.Update(c.Request.Context(), id, in)
	if err != nil {
		failArchiveError(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, a)
}

// DeleteArchivedDeal godoc
// @ID          deleteArchivedDeal
// @Summary     Delete an archived deal
// @Tags        Archive
// @Security    BearerAuth
//
// @Param       id  path  int  true "Archived deal ID"
//
// @Success     204  {string}  string "No Content"
// @Failure     404  {object}  handlers.ErrorResponse "Archived deal not found"
// @Router      /archived-deals/{id} [delete]
func (h *Handlers) DeleteArchivedDeal(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	if err := h.archive.Delete(c.Request.Context(), id); err != nil {
		failArchiveError(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}

// RestoreArchivedDeal godoc
// @ID          restoreArchivedDeal
// @Summary     Restore an archived deal
// @Description Creates a fresh active deal from the archive row (lookup links nulled) and removes the archive row.
// @Tags        Archive
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true "Archived deal ID"
//
// @Success     201  {object}  repo.DealWithNames
// @Failure     404  {object}  handlers.ErrorResponse "Archived deal not found"
// @Router      /archived-deals/{id}/restore [post]
func (h *Handlers) RestoreArchivedDeal(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	d, err := h.archive.Restore(c.Request.Context(), id)
	if err != nil {
		failArchiveError(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusCreated, d)
}

// failArchiveError maps archive service errors onto HTTP responses.
func failArchiveError(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrArchivedDealNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "archived deal not found")
	case errors.Is(err, services.ErrInvalidArchiveStatus),
		errors.Is(err, services.ErrArchiveNameRequired),
		errors.Is(err, services.ErrArchiveMonthRequired):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}
