package models

import (
	"time"
)

// SessionStatus governs bot-vs-human routing for one customer conversation
type SessionStatus string

const (
	SessionStatusBot     SessionStatus = "bot"
	SessionStatusWaiting SessionStatus = "waiting"
	SessionStatusHuman   SessionStatus = "human"
	SessionStatusClosed  SessionStatus = "closed"
)

// sessionTransitions is the exhaustive legal-transition table. Anything not
// listed here is an illegal transition and must be rejected by the store.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusBot:     {SessionStatusWaiting, SessionStatusHuman, SessionStatusClosed},
	SessionStatusWaiting: {SessionStatusHuman, SessionStatusClosed},
	SessionStatusHuman:   {SessionStatusClosed},
	SessionStatusClosed:  {SessionStatusBot},
}

// CanTransition reports whether from -> to is a legal session transition.
// A no-op transition (from == to) is always allowed.
func CanTransition(from, to SessionStatus) bool {
	if from == to {
		return true
	}
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ChatSession is the per-customer conversation record, keyed by the
// normalized phone number (digits only).
type ChatSession struct {
	Phone       string        `gorm:"type:text;primaryKey" json:"phone"`
	ClientName  string        `gorm:"type:text" json:"client_name"`
	Status      SessionStatus `gorm:"type:text;default:'bot'" json:"status"`
	LastMessage string        `gorm:"type:text" json:"last_message"`
	LastAt      time.Time     `json:"last_at"`
	UnreadCount int           `gorm:"default:0" json:"unread_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (ChatSession) TableName() string {
	return "chat_sessions"
}

// Message direction constants
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Message author constants
const (
	AuthorCustomer = "customer"
	AuthorBot      = "bot"
	AuthorOperator = "operator"
)

// ChatMessage is one transcript entry of a session, ordered by CreatedAt
type ChatMessage struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionPhone string    `gorm:"type:text;not null;index" json:"session_phone"`
	Direction    string    `gorm:"type:text;not null" json:"direction"`
	Author       string    `gorm:"type:text;not null" json:"author"`
	Body         string    `gorm:"type:text" json:"body"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ProcessedMessage marks one inbound provider message id as handled. Its
// primary key doubles as the dedup gate: creating a duplicate fails with a
// unique-key conflict, which callers treat as "already handled".
type ProcessedMessage struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (ProcessedMessage) TableName() string {
	return "processed_messages"
}
