// User administration HTTP handlers (admin-only routes).
//
// Accounts are created with a generated temporary password that is returned
// exactly once in the create/reset response; the recipient must rotate it on
// first login.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/services"
)

// CreateUserRequest is the JSON payload for creating an account.
type CreateUserRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role"`
}

// SetDisabledRequest is the JSON payload for enabling/disabling an account.
type SetDisabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

// TempPasswordResponse carries a freshly generated temporary password. It is
// shown once and never stored in plain text.
type TempPasswordResponse struct {
	User         *domain.User `json:"user"`
	TempPassword string       `json:"tempPassword"`
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {array}   domain.User
// @Failure     403  {object}  handlers.ErrorResponse "Admin only"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, users)
}

// CreateUser godoc
// @ID          createUser
// @Summary     Create a user
// @Description Creates an account with a generated temporary password, returned once in the response.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateUserRequest  true "New account payload"
//
// @Success     201  {object}  handlers.TempPasswordResponse
// @Failure     400  {object}  handlers.ErrorResponse "Invalid role or email taken"
// @Router      /users [post]
func (h *Handlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email required")
		return
	}
	u, temp, err := h.users.Create(c.Request.Context(), req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrEmailTaken):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, TempPasswordResponse{User: u, TempPassword: temp})
}

// SetUserDisabled godoc
// @ID          setUserDisabled
// @Summary     Enable or disable a user
// @Description Disabled accounts cannot log in. Admins cannot disable themselves.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int                         true "User ID"
// @Param       body  body  handlers.SetDisabledRequest true "Disabled flag"
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse "Cannot target own account"
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Router      /users/{id}/disabled [put]
func (h *Handlers) SetUserDisabled(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	actor, okActor := actorID(c)
	if !okActor {
		return
	}
	var req SetDisabledRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Disabled == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "disabled flag required")
		return
	}
	if err := h.users.SetDisabled(c.Request.Context(), actor, id, *req.Disabled); err != nil {
		failUserError(c, err)
		return
	}
	noContent(c)
}

// ResetUserPassword godoc
// @ID          resetUserPassword
// @Summary     Reset a user's password
// @Description Issues a fresh temporary password, returned once in the response.
// @Tags        Users
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true "User ID"
//
// @Success     200  {object}  handlers.TempPasswordResponse
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Router      /users/{id}/reset-password [post]
func (h *Handlers) ResetUserPassword(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	temp, err := h.users.ResetPassword(c.Request.Context(), id)
	if err != nil {
		failUserError(c, err)
		return
	}
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, TempPasswordResponse{User: u, TempPassword: temp})
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Delete a user
// @Description Self-deletion and deleting the last enabled admin are rejected.
// @Tags        Users
// @Security    BearerAuth
//
// @Param       id  path  int  true "User ID"
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse "Protected account"
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Router      /users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, okID := pathID(c)
	if !okID {
		return
	}
	actor, okActor := actorID(c)
	if !okActor {
		return
	}
	if err := h.users.Delete(c.Request.Context(), actor, id); err != nil {
		failUserError(c, err)
		return
	}
	noContent(c)
}

// failUserError maps user service sentinels onto HTTP responses.
func failUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrSelfTarget), errors.Is(err, services.ErrLastAdmin):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
