package repository

import (
	"context"

	"github.com/Domenick1991/busbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SupportRepository interface {
	Create(ctx context.Context, ticket *domain.SupportTicket) error
	List(ctx context.Context) ([]domain.SupportTicket, error)
	ListByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error)
	GetByID(ctx context.Context, id string) (*domain.SupportTicket, error)
	Update(ctx context.Context, ticket *domain.SupportTicket) error
}

type PGSupportRepository struct {
	db *pgxpool.Pool
}

func NewSupportRepository(db *pgxpool.Pool) SupportRepository {
	return &PGSupportRepository{db: db}
}

const ticketColumns = `id, user_id, subject, message, status, priority, admin_note, created_at, updated_at`

func (r *PGSupportRepository) Create(ctx context.Context, t *domain.SupportTicket) error {
	err := r.db.QueryRow(ctx, `INSERT INTO support_tickets (id, user_id, subject, message, status, priority, admin_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		t.ID, t.UserID, t.Subject, t.Message, t.Status, t.Priority, t.AdminNote).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	return mapError(err, "insert support ticket")
}

func (r *PGSupportRepository) List(ctx context.Context) ([]domain.SupportTicket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM support_tickets ORDER BY created_at DESC`)
}

func (r *PGSupportRepository) ListByUser(ctx context.Context, userID string) ([]domain.SupportTicket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *PGSupportRepository) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM support_tickets WHERE id=$1`, id))
	if err != nil {
		return nil, mapError(err, "get support ticket "+id)
	}
	return t, nil
}

func (r *PGSupportRepository) Update(ctx context.Context, t *domain.SupportTicket) error {
	err := r.db.QueryRow(ctx, `UPDATE support_tickets SET status=$2, priority=$3, admin_note=$4, updated_at=now()
		WHERE id=$1
		RETURNING created_at, updated_at`,
		t.ID, t.Status, t.Priority, t.AdminNote).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	return mapError(err, "update support ticket "+t.ID)
}

func (r *PGSupportRepository) list(ctx context.Context, query string, args ...any) ([]domain.SupportTicket, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list support tickets")
	}
	defer rows.Close()

	tickets := make([]domain.SupportTicket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, mapError(err, "scan support ticket")
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.SupportTicket, error) {
	var t domain.SupportTicket
	if err := row.Scan(&t.ID, &t.UserID, &t.Subject, &t.Message, &t.Status, &t.Priority, &t.AdminNote, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

var _ SupportRepository = (*PGSupportRepository)(nil)
