package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/message"
)

type messageRepository struct {
	db *sqlx.DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) *messageRepository {
	return &messageRepository{db: db}
}

type messageRow struct {
	ID          string    `db:"id"`
	SenderID    string    `db:"sender_id"`
	RecipientID string    `db:"recipient_id"`
	Subject     string    `db:"subject"`
	Content     string    `db:"content"`
	Read        bool      `db:"read"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type messageFullRow struct {
	messageRow
	Sender    refRow `db:"sender"`
	Recipient refRow `db:"recipient"`
}

func (repo messageRepository) row(msg message.Message) messageRow {
	return messageRow{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Subject:     msg.Subject,
		Content:     msg.Content,
		Read:        msg.Read,
		CreatedAt:   msg.CreatedAt.UTC(),
		UpdatedAt:   msg.UpdatedAt.UTC(),
	}
}

func (repo messageRepository) unrow(row messageRow) message.Message {
	return message.Message{
		ID:          row.ID,
		SenderID:    row.SenderID,
		RecipientID: row.RecipientID,
		Subject:     row.Subject,
		Content:     row.Content,
		Read:        row.Read,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to message.ErrNotFound
func (repo messageRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return message.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const messageColumns = `m.id, m.sender_id, m.recipient_id, m.subject, m.content, m.read, m.created_at, m.updated_at`

func (repo messageRepository) CreateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	msg.ID = uuid.New().String()
	query := `
		INSERT INTO messages (id, sender_id, recipient_id, subject, content, read, created_at, updated_at)
		VALUES (:id, :sender_id, :recipient_id, :subject, :content, :read, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, query, repo.row(msg)); err != nil {
		return message.Message{}, errors.Wrap(err, "inserting message")
	}
	return msg, nil
}

func (repo messageRepository) QueryMessagesByUser(ctx context.Context, userID string) ([]message.Message, error) {
	var rows []messageFullRow
	query := `
		SELECT ` + messageColumns + `,
		       s.id AS "sender.id", s.name AS "sender.name", s.email AS "sender.email",
		       r.id AS "recipient.id", r.name AS "recipient.name", r.email AS "recipient.email"
		FROM messages m
		JOIN users s ON s.id = m.sender_id
		JOIN users r ON r.id = m.recipient_id
		WHERE m.sender_id = $1 OR m.recipient_id = $1
		ORDER BY m.created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}

	msgs := make([]message.Message, 0, len(rows))
	for _, row := range rows {
		msg := repo.unrow(row.messageRow)
		msg.Sender = row.Sender.ref()
		msg.Recipient = row.Recipient.ref()
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (repo messageRepository) GetMessageByID(ctx context.Context, id string) (message.Message, error) {
	if _, err := uuid.Parse(id); err != nil {
		return message.Message{}, message.ErrNotFound
	}
	var row messageRow
	query := `SELECT ` + messageColumns + ` FROM messages m WHERE m.id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return message.Message{}, repo.trapNoRowsErr(err, "finding message by ID")
	}
	return repo.unrow(row), nil
}

func (repo messageRepository) UpdateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	query := `
		UPDATE messages
		SET subject = :subject, content = :content, read = :read, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, repo.row(msg))
	if err != nil {
		return message.Message{}, errors.Wrap(err, "updating message")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return message.Message{}, message.ErrNotFound
	}
	return msg, nil
}
