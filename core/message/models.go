package message

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

// DefaultSubject replaces a blank subject on send.
const DefaultSubject = "No Subject"

type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Subject     string    `json:"subject"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
	UpdatedAt   time.Time `json:"updatedAt"` // UTC

	// populated when queried
	Sender    *user.Ref `json:"sender,omitempty"`
	Recipient *user.Ref `json:"recipient,omitempty"`
}

type NewMessage struct {
	RecipientID string `json:"recipientId" validate:"required"`
	Subject     string `json:"subject"`
	Content     string `json:"content" validate:"required"`
}

func (nm *NewMessage) Validate(validate *validator.Validate) error {
	nm.RecipientID = core.CleanString(nm.RecipientID)
	nm.Subject = core.CleanString(nm.Subject)
	if err := validate.Struct(nm); err != nil {
		return err
	}
	if nm.Subject == "" {
		nm.Subject = DefaultSubject
	}
	return nil
}
