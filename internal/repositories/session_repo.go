package repositories

import (
	"fmt"
	"time"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
	"gorm.io/gorm"
)

type SessionRepo interface {
	GetOrCreate(phone, clientName string) (*models.ChatSession, bool, error)
	Get(phone string) (*models.ChatSession, error)
	UpdateStatus(phone string, to models.SessionStatus) error
	RecordInbound(session *models.ChatSession, body string) error
	RecordOutbound(phone, author, body string) error
	ResetUnread(phone string) error
	Messages(phone string) ([]models.ChatMessage, error)
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepo {
	return &sessionRepo{db: db}
}

// GetOrCreate loads the session for a normalized phone, creating a fresh
// bot-status one on first contact. The second return reports creation.
func (r *sessionRepo) GetOrCreate(phone, clientName string) (*models.ChatSession, bool, error) {
	var session models.ChatSession
	err := r.db.First(&session, "phone = ?", phone).Error
	if err == nil {
		return &session, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	session = models.ChatSession{
		Phone:      phone,
		ClientName: clientName,
		Status:     models.SessionStatusBot,
	}
	if err := r.db.Create(&session).Error; err != nil {
		return nil, false, err
	}
	return &session, true, nil
}

func (r *sessionRepo) Get(phone string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.First(&session, "phone = ?", phone).Error
	return &session, err
}

// UpdateStatus applies a session transition, refusing illegal ones so the
// state machine stays consistent across call sites.
func (r *sessionRepo) UpdateStatus(phone string, to models.SessionStatus) error {
	var session models.ChatSession
	if err := r.db.First(&session, "phone = ?", phone).Error; err != nil {
		return err
	}
	if !models.CanTransition(session.Status, to) {
		return fmt.Errorf("illegal session transition %s -> %s", session.Status, to)
	}
	return r.db.Model(&models.ChatSession{}).
		Where("phone = ?", phone).
		Update("status", to).Error
}

// RecordInbound appends a customer message to the transcript and bumps the
// unread counter, unless a human operator is already engaged (presumed read).
func (r *sessionRepo) RecordInbound(session *models.ChatSession, body string) error {
	msg := models.ChatMessage{
		SessionPhone: session.Phone,
		Direction:    models.DirectionIn,
		Author:       models.AuthorCustomer,
		Body:         body,
	}
	if err := r.db.Create(&msg).Error; err != nil {
		return err
	}

	updates := map[string]interface{}{
		"last_message": body,
		"last_at":      time.Now(),
	}
	if session.Status != models.SessionStatusHuman {
		updates["unread_count"] = gorm.Expr("unread_count + 1")
	}
	return r.db.Model(&models.ChatSession{}).
		Where("phone = ?", session.Phone).
		Updates(updates).Error
}

// RecordOutbound appends a bot- or operator-authored reply to the transcript.
func (r *sessionRepo) RecordOutbound(phone, author, body string) error {
	msg := models.ChatMessage{
		SessionPhone: phone,
		Direction:    models.DirectionOut,
		Author:       author,
		Body:         body,
	}
	return r.db.Create(&msg).Error
}

func (r *sessionRepo) ResetUnread(phone string) error {
	return r.db.Model(&models.ChatSession{}).
		Where("phone = ?", phone).
		Update("unread_count", 0).Error
}

func (r *sessionRepo) Messages(phone string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.
		Where("session_phone = ?", phone).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}
