// Handler wiring shared by all endpoint files.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Business rules live in
// internal/services; this package only maps service sentinel errors onto the
// stable HTTP error taxonomy defined in errors.go.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/auth"
	"github.com/tbourn/go-crm-backend/internal/http/middleware"
	"github.com/tbourn/go-crm-backend/internal/services"
	"github.com/tbourn/go-crm-backend/internal/utils"
)

// Handlers groups the HTTP endpoints for the CRM API.
type Handlers struct {
	deals   *services.DealService
	lookups *services.LookupService
	closer  *services.CloseService
	archive *services.ArchiveService
	leads   *services.LeadService
	users   *services.UserService
	tokens  auth.Tokens
}

// New constructs a Handlers instance bound to the given services.
func New(
	deals *services.DealService,
	lookups *services.LookupService,
	closer *services.CloseService,
	archive *services.ArchiveService,
	leads *services.LeadService,
	users *services.UserService,
	tokens auth.Tokens,
) *Handlers {
	return &Handlers{
		deals:   deals,
		lookups: lookups,
		closer:  closer,
		archive: archive,
		leads:   leads,
		users:   users,
		tokens:  tokens,
	}
}

// pathID parses the ":id" path parameter as an unsigned integer. On failure
// it writes a 400 response and returns false.
func pathID(c *gin.Context) (uint, bool) {
	id := utils.AtoiDefault(c.Param("id"), 0)
	if id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// actorID returns the authenticated user's id set by the auth middleware.
// A missing identity is a 401 (the route was mounted without RequireAuth).
func actorID(c *gin.Context) (uint, bool) {
	id, ok := middleware.UserIDFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return 0, false
	}
	return id, true
}
