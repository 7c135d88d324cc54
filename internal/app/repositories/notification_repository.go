package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/mobility/internal/app/models"
)

// INotificationRepository defines inbox persistence. Every method except
// CreateBatch is scoped to the owning user.
type INotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateBatch inserts all rows with one statement
func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	qb := psql.Insert("notifications").Columns("user_id", "message", "link")
	for _, n := range notifications {
		qb = qb.Values(n.UserID, n.Message, n.Link)
	}
	sql, args, err := qb.Suffix("RETURNING id, is_read, created_at").ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error creating notifications: %w", err)
	}
	defer rows.Close()

	// RETURNING preserves VALUES order for a single-statement insert
	i := 0
	for rows.Next() {
		n := notifications[i]
		if err := rows.Scan(&n.ID, &n.IsRead, &n.CreatedAt); err != nil {
			return fmt.Errorf("error scanning notification: %w", err)
		}
		i++
	}
	return rows.Err()
}

// ListByUser returns the user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*models.Notification, error) {
	qb := psql.Select("id", "user_id", "message", "link", "is_read", "created_at").
		From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id")
	if unreadOnly {
		qb = qb.Where(squirrel.Eq{"is_read": false})
	}
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notification: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// CountUnread counts the user's unread notifications
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return n, nil
}

// MarkRead flags one of the user's notifications as read
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundErr("notification")
	}
	return nil
}

// MarkAllRead flags every unread notification of the user and returns how many changed
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes one of the user's notifications
func (r *NotificationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("error deleting notification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundErr("notification")
	}
	return nil
}
