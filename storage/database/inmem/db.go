// Package inmemdb provides map backed repositories for tests and local
// development, there is no persistence.
package inmemdb

import (
	"sync"

	"github.com/darasahq/darasa/core/appointment"
	"github.com/darasahq/darasa/core/message"
	"github.com/darasahq/darasa/core/user"
)

type (
	DB struct {
		user        *userTable
		appointment *appointmentTable
		message     *messageTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	appointmentTable struct {
		table map[string]*appointment.Appointment
		mutex sync.RWMutex
	}

	messageTable struct {
		table map[string]*message.Message
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		user:        &userTable{table: make(map[string]*user.User)},
		appointment: &appointmentTable{table: make(map[string]*appointment.Appointment)},
		message:     &messageTable{table: make(map[string]*message.Message)},
	}
}

// Reset truncates every table. Tests call it to start from a blank database.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	db.user.table = make(map[string]*user.User)
	db.user.mutex.Unlock()

	db.appointment.mutex.Lock()
	db.appointment.table = make(map[string]*appointment.Appointment)
	db.appointment.mutex.Unlock()

	db.message.mutex.Lock()
	db.message.table = make(map[string]*message.Message)
	db.message.mutex.Unlock()
}
