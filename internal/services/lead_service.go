// Package services – LeadService
//
// This file implements inbound lead management: capture from the website
// contact form, triage (convert/dismiss), and deletion. First and last names
// arrive in whatever casing the form submitted, so they are title-cased on
// the way in.
package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-crm-backend/internal/domain"
	"github.com/tbourn/go-crm-backend/internal/repo"
)

// LeadInput is the capture payload for a new lead.
type LeadInput struct {
	FirstName    *string `json:"firstname"`
	LastName     *string `json:"lastname"`
	Email        *string `json:"email"`
	Mobile       *string `json:"mobile"`
	Company      *string `json:"company"`
	Message      *string `json:"message"`
	Source       *string `json:"source"`
	ReceivedDate *string `json:"received_date"`
}

// LeadService manages inbound leads.
type LeadService struct {
	DB    *gorm.DB
	Clock Clock
}

// NewLeadService constructs a LeadService on the system clock.
func NewLeadService(db *gorm.DB) *LeadService {
	return &LeadService{DB: db, Clock: SystemClock{}}
}

var nameCaser = cases.Title(language.English, cases.NoLower)

// List returns all leads, unprocessed first.
func (s *LeadService) List(ctx context.Context) ([]domain.Lead, error) {
	return repo.ListLeads(ctx, s.DB)
}

// Create captures a new lead. The received date defaults to today.
func (s *LeadService) Create(ctx context.Context, in LeadInput) (*domain.Lead, error) {
	l := domain.Lead{
		FirstName:    titleName(in.FirstName),
		LastName:     titleName(in.LastName),
		Email:        in.Email,
		Mobile:       in.Mobile,
		Company:      in.Company,
		Message:      in.Message,
		Source:       in.Source,
		Status:       domain.LeadStatusNew,
		ReceivedDate: s.Clock.Now().Format("2006-01-02"),
	}
	if in.ReceivedDate != nil && *in.ReceivedDate != "" {
		l.ReceivedDate = *in.ReceivedDate
	}
	if err := repo.CreateLead(ctx, s.DB, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateStatus triages a lead. A converted lead may reference the deal it
// produced; the link is validated when provided.
func (s *LeadService) UpdateStatus(ctx context.Context, id uint, status string, convertedDealID *uint) (*domain.Lead, error) {
	switch status {
	case domain.LeadStatusNew, domain.LeadStatusConverted, domain.LeadStatusDismissed:
	default:
		return nil, ErrInvalidLeadStatus
	}

	if convertedDealID != nil {
		if _, err := repo.GetDeal(ctx, s.DB, *convertedDealID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrDealNotFound
			}
			return nil, err
		}
	}

	if err := repo.UpdateLeadStatus(ctx, s.DB, id, status, convertedDealID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return repo.GetLead(ctx, s.DB, id)
}

// Delete removes a lead.
func (s *LeadService) Delete(ctx context.Context, id uint) error {
	err := repo.DeleteLead(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrLeadNotFound
	}
	return err
}

// titleName trims and title-cases a submitted name, preserving nil and
// dropping all-whitespace values.
func titleName(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	t = nameCaser.String(t)
	return &t
}
