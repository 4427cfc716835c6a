package support

import (
	"context"
	"strings"

	"github.com/Domenick1991/busbooking/internal/auth"
	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/Domenick1991/busbooking/internal/repository"
	"github.com/google/uuid"
)

type SupportUseCase interface {
	CreateTicket(ctx context.Context, caller auth.Identity, input CreateTicketInput) (*domain.SupportTicket, error)
	ListMyTickets(ctx context.Context, caller auth.Identity) ([]domain.SupportTicket, error)
	ListAllTickets(ctx context.Context, caller auth.Identity) ([]domain.SupportTicket, error)
	UpdateTicket(ctx context.Context, caller auth.Identity, id string, input UpdateTicketInput) (*domain.SupportTicket, error)
}

type CreateTicketInput struct {
	Subject  string                `json:"subject"`
	Message  string                `json:"message"`
	Priority domain.TicketPriority `json:"priority,omitempty"`
}

// UpdateTicketInput changes a ticket. Empty fields keep the stored value.
type UpdateTicketInput struct {
	Status    domain.TicketStatus   `json:"status,omitempty"`
	Priority  domain.TicketPriority `json:"priority,omitempty"`
	AdminNote string                `json:"admin_note,omitempty"`
}

type SupportService struct {
	tickets repository.SupportRepository
}

func NewSupportService(tickets repository.SupportRepository) *SupportService {
	return &SupportService{tickets: tickets}
}

func (s *SupportService) CreateTicket(ctx context.Context, caller auth.Identity, input CreateTicketInput) (*domain.SupportTicket, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)
	if input.Subject == "" {
		return nil, domain.NewValidationError("subject", "is required")
	}
	if input.Message == "" {
		return nil, domain.NewValidationError("message", "is required")
	}
	if input.Priority == "" {
		input.Priority = domain.TicketPriorityLow
	}
	if !input.Priority.Valid() {
		return nil, domain.NewValidationError("priority", "must be one of low, medium, high, urgent")
	}

	ticket := &domain.SupportTicket{
		ID:       uuid.NewString(),
		UserID:   caller.UserID,
		Subject:  input.Subject,
		Message:  input.Message,
		Status:   domain.TicketStatusOpen,
		Priority: input.Priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *SupportService) ListMyTickets(ctx context.Context, caller auth.Identity) ([]domain.SupportTicket, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.tickets.ListByUser(ctx, caller.UserID)
}

func (s *SupportService) ListAllTickets(ctx context.Context, caller auth.Identity) ([]domain.SupportTicket, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrForbidden
	}
	return s.tickets.List(ctx)
}

func (s *SupportService) UpdateTicket(ctx context.Context, caller auth.Identity, id string, input UpdateTicketInput) (*domain.SupportTicket, error) {
	if !caller.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if input.Status != "" && !input.Status.Valid() {
		return nil, domain.NewValidationError("status", "must be one of open, in-progress, resolved, closed")
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return nil, domain.NewValidationError("priority", "must be one of low, medium, high, urgent")
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Status != "" {
		ticket.Status = input.Status
	}
	if input.Priority != "" {
		ticket.Priority = input.Priority
	}
	if input.AdminNote != "" {
		ticket.AdminNote = input.AdminNote
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

var _ SupportUseCase = (*SupportService)(nil)
