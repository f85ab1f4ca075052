// Package dummymail records sent messages in memory so tests can assert on
// them without any output.
package dummymail

import (
	"sync"

	"github.com/darasahq/darasa/core"
)

type Service struct {
	frontendBaseURL string

	mu           sync.Mutex
	sentMessages []core.EmailMessage
}

var _ core.EmailService = (*Service)(nil)

func NewService(conf *core.Config) *Service {
	return &Service{frontendBaseURL: conf.FrontendBaseURL}
}

func (svc *Service) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		if err := msg.Render(svc.frontendBaseURL); err != nil {
			continue
		}
		if msg.HasRecipients() && msg.HasContent() {
			svc.mu.Lock()
			svc.sentMessages = append(svc.sentMessages, *msg)
			svc.mu.Unlock()
		}
	}
}

// SentMessages returns a copy of all recorded messages.
func (svc *Service) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	msgs := make([]core.EmailMessage, len(svc.sentMessages))
	copy(msgs, svc.sentMessages)
	return msgs
}

// Reset clears recorded messages between tests.
func (svc *Service) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.sentMessages = nil
}
