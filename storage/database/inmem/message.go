package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/darasahq/darasa/core/message"
	"github.com/darasahq/darasa/core/user"
)

type messageRepository struct {
	db    *messageTable
	users *userTable
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *DB) *messageRepository {
	return &messageRepository{db: db.message, users: db.user}
}

func (repo *messageRepository) query() []message.Message {
	msgs := make([]message.Message, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		msgs = append(msgs, *m)
	}
	return msgs
}

func (repo *messageRepository) userRef(id string) *user.Ref {
	repo.users.mutex.RLock()
	defer repo.users.mutex.RUnlock()

	if usr, ok := repo.users.table[id]; ok {
		return usr.Ref()
	}
	return nil
}

func (repo *messageRepository) CreateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	msg.ID = uuid.New().String()
	repo.db.table[msg.ID] = &msg
	return msg, nil
}

func (repo *messageRepository) QueryMessagesByUser(ctx context.Context, userID string) ([]message.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	msgs := make([]message.Message, 0)
	for _, msg := range repo.query() {
		if msg.SenderID == userID || msg.RecipientID == userID {
			msg.Sender = repo.userRef(msg.SenderID)
			msg.Recipient = repo.userRef(msg.RecipientID)
			msgs = append(msgs, msg)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.After(msgs[j].CreatedAt) })
	return msgs, nil
}

func (repo *messageRepository) GetMessageByID(ctx context.Context, id string) (message.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if msg, ok := repo.db.table[id]; ok {
		return *msg, nil
	}
	return message.Message{}, message.ErrNotFound
}

func (repo *messageRepository) UpdateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[msg.ID]; !ok {
		return message.Message{}, message.ErrNotFound
	}
	repo.db.table[msg.ID] = &msg
	return msg, nil
}
