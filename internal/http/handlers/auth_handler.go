// Authentication HTTP handlers.
//
// Public surface: first-run setup status, initial admin creation, and login.
// Authenticated surface: current-identity lookup and password rotation.
// Login failures deliberately return the same message for unknown email and
// wrong password.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/services"
)

// CredentialsRequest is the JSON payload for setup and login.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the JSON payload for password rotation.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// SetupStatusResponse reports whether first-run setup is still open.
type SetupStatusResponse struct {
	NeedsSetup bool `json:"needsSetup"`
}

// LoginResponse carries the session token and the authenticated user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// SetupStatus godoc
// @ID          setupStatus
// @Summary     First-run setup status
// @Description Reports whether no user exists yet, i.e. the setup endpoint is open.
// @Tags        Auth
// @Produce     json
//
// @Success     200  {object}  handlers.SetupStatusResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /auth/setup-status [get]
func (h *Handlers) SetupStatus(c *gin.Context) {
	needs, err := h.users.NeedsSetup(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, SetupStatusResponse{NeedsSetup: needs})
}

// Setup godoc
// @ID          setup
// @Summary     Create the initial admin
// @Description Creates the first admin account. Only works while the users table is empty; afterwards returns 409.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CredentialsRequest  true "Admin credentials"
//
// @Success     201  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse "Weak password"
// @Failure     409  {object}  handlers.ErrorResponse "Setup already completed"
// @Router      /auth/setup [post]
func (h *Handlers) Setup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}
	u, err := h.users.Setup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSetupDone):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		case errors.Is(err, services.ErrWeakPassword), errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	token, err := h.tokens.Generate(u, h.users.Clock.Now())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, LoginResponse{Token: token, User: u})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and returns a session token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CredentialsRequest  true "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     401  {object}  handlers.ErrorResponse "Invalid credentials"
// @Failure     403  {object}  handlers.ErrorResponse "Account disabled"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}
	u, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
		case errors.Is(err, services.ErrAccountDisabled):
			fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	token, err := h.tokens.Generate(u, h.users.Clock.Now())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: token, User: u})
}

// Me godoc
// @ID          me
// @Summary     Current identity
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse "Unauthorized"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	id, okActor := actorID(c)
	if !okActor {
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "account no longer exists")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}

// ChangePassword godoc
// @ID          changePassword
// @Summary     Change own password
// @Description Rotates the caller's password. The current password is required unless the account is on a temporary password.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.ChangePasswordRequest  true "Password payload"
//
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse "Weak or wrong password"
// @Router      /auth/change-password [post]
func (h *Handlers) ChangePassword(c *gin.Context) {
	id, okActor := actorID(c)
	if !okActor {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "new_password required")
		return
	}
	u, err := h.users.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWeakPassword), errors.Is(err, services.ErrWrongPassword):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "account no longer exists")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, u)
}
