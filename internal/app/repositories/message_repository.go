package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/mobility/internal/app/models"
)

// IMessageRepository defines dossier thread persistence
type IMessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.Message, error)
}

// MessageRepository handles database operations for messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a message
func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (application_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		message.ApplicationID,
		message.SenderID,
		message.Content,
	).Scan(&message.ID, &message.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// ListByApplication returns the thread oldest first, with each sender
func (r *MessageRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*models.Message, error) {
	query := `
		SELECT m.id, m.application_id, m.sender_id, m.content, m.created_at,
			p.id, p.email, p.full_name, p.role, p.major_id, p.created_at
		FROM messages m
		JOIN profiles p ON p.id = m.sender_id
		WHERE m.application_id = $1
		ORDER BY m.created_at ASC, m.id
	`
	rows, err := r.db.Query(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)
	for rows.Next() {
		var m models.Message
		var sender models.Profile
		if err := rows.Scan(
			&m.ID, &m.ApplicationID, &m.SenderID, &m.Content, &m.CreatedAt,
			&sender.ID, &sender.Email, &sender.FullName, &sender.Role, &sender.MajorID, &sender.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		m.Sender = &sender
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
