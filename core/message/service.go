package message

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("message not found")
	ErrSelfMessage  = errors.New("you cannot send a message to yourself")
	ErrNotRecipient = errors.New("only the recipient can mark a message as read")
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		// QueryMessagesByUser returns messages sent or received by the user,
		// newest first, with both refs populated.
		QueryMessagesByUser(ctx context.Context, userID string) ([]Message, error)
		GetMessageByID(ctx context.Context, id string) (Message, error)
		UpdateMessage(ctx context.Context, msg Message) (Message, error)
	}

	Service interface {
		Send(ctx context.Context, actor user.User, nm NewMessage) (Message, error)
		QueryOwn(ctx context.Context, actor user.User) ([]Message, error)
		MarkRead(ctx context.Context, actor user.User, id string) (Message, error)
	}

	service struct {
		repo   Repository
		usrSvc user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service) Service {
	return &service{
		repo:   repo,
		usrSvc: usrSvc,
	}
}

func (svc *service) Send(ctx context.Context, actor user.User, nm NewMessage) (Message, error) {
	if nm.RecipientID == actor.ID {
		return Message{}, ErrSelfMessage
	}
	recipient, err := svc.usrSvc.GetByID(ctx, nm.RecipientID)
	if err != nil {
		return Message{}, err
	}

	now := time.Now().UTC()
	msg := Message{
		SenderID:    actor.ID,
		RecipientID: recipient.ID,
		Subject:     nm.Subject,
		Content:     nm.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateMessage(ctx, msg)
}

func (svc *service) QueryOwn(ctx context.Context, actor user.User) ([]Message, error) {
	return svc.repo.QueryMessagesByUser(ctx, actor.ID)
}

// MarkRead flips the read flag for the recipient. The flag is one way;
// marking an already read message again is a no-op.
func (svc *service) MarkRead(ctx context.Context, actor user.User, id string) (Message, error) {
	msg, err := svc.repo.GetMessageByID(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if msg.RecipientID != actor.ID {
		return Message{}, ErrNotRecipient
	}
	if msg.Read {
		return msg, nil
	}
	msg.Read = true
	msg.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateMessage(ctx, msg)
}
