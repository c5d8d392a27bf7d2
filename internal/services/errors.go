// Package services defines the business logic for the sales pipeline: the
// month-close engine, deal lifecycle rules, the archive, leads, and user
// management. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

// Deal-related errors.
var (
	// ErrDealNotFound indicates that the requested deal does not exist.
	ErrDealNotFound = errors.New("deal not found")

	// ErrInvalidStatus is returned when a deal status is outside the allowed
	// set (active, keep_warm, won, lost).
	ErrInvalidStatus = errors.New("invalid deal status")

	// ErrCloseDateRequired is returned when a deal is placed on a stage with
	// probability >= 40 without a close date. The message names the missing
	// field so clients can surface it directly.
	ErrCloseDateRequired = errors.New("close date is required for stages at 40% probability or higher")

	// ErrDealValueRequired is the companion rule for the deal value.
	ErrDealValueRequired = errors.New("deal value is required for stages at 40% probability or higher")

	// ErrStageNotFound indicates the referenced pipeline stage does not exist.
	ErrStageNotFound = errors.New("stage not found")

	// ErrInvalidListType is returned for lookup operations on an unknown list.
	ErrInvalidListType = errors.New("invalid list type")
)

// Close-month errors.
var (
	// ErrNoSnapshot is returned by the prior-month recompute when the month
	// has never been closed, so there is no snapshot to update.
	ErrNoSnapshot = errors.New("no snapshot exists for the prior month; close the month first")
)

// Archive errors.
var (
	// ErrArchivedDealNotFound indicates the requested archive row is missing.
	ErrArchivedDealNotFound = errors.New("archived deal not found")

	// ErrInvalidArchiveStatus is returned when an archive row would carry a
	// non-terminal status.
	ErrInvalidArchiveStatus = errors.New("archived deals must be won or lost")

	// ErrArchiveNameRequired is returned on import without a deal name.
	ErrArchiveNameRequired = errors.New("deal_name is required")

	// ErrArchiveMonthRequired is returned on import without the archived_for
	// month/year tag.
	ErrArchiveMonthRequired = errors.New("archived_for_month and archived_for_year are required")
)

// Lead errors.
var (
	// ErrLeadNotFound indicates the requested lead is missing.
	ErrLeadNotFound = errors.New("lead not found")

	// ErrInvalidLeadStatus is returned for statuses outside new, converted,
	// dismissed.
	ErrInvalidLeadStatus = errors.New("invalid lead status")
)

// User and auth errors.
var (
	// ErrUserNotFound indicates the requested user is missing.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned on login with a wrong email/password
	// pair. The message deliberately does not say which.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is returned when a disabled account attempts login.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrEmailTaken is returned when a user email is already registered.
	ErrEmailTaken = errors.New("email already exists")

	// ErrSetupDone is returned when first-run setup is attempted after a user
	// already exists.
	ErrSetupDone = errors.New("setup already completed")

	// ErrWeakPassword is returned for passwords below the minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")

	// ErrWrongPassword is returned when the current password check fails on a
	// password change.
	ErrWrongPassword = errors.New("current password is incorrect")

	// ErrInvalidRole is returned when creating a user with an unknown role.
	ErrInvalidRole = errors.New("invalid role")

	// ErrSelfTarget is returned when an admin tries to disable or delete
	// their own account.
	ErrSelfTarget = errors.New("cannot target your own account")

	// ErrLastAdmin protects the final enabled admin account from deletion.
	ErrLastAdmin = errors.New("cannot delete the last admin account")
)
