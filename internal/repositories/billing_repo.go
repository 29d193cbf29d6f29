package repositories

import (
	"github.com/google/uuid"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
	"gorm.io/gorm"
)

type BillingRepo interface {
	CreateExecution(log *models.BillingExecutionLog) error
	UpdateExecution(log *models.BillingExecutionLog) error
	GetExecutionByBatchID(batchID string) (*models.BillingExecutionLog, error)
	CreateMessage(msg *models.BillingMessage) error
	UpdateMessage(msg *models.BillingMessage) error
	MessagesByExecution(executionID uuid.UUID) ([]models.BillingMessage, error)
}

type billingRepo struct {
	db *gorm.DB
}

func NewBillingRepo(db *gorm.DB) BillingRepo {
	return &billingRepo{db: db}
}

func (r *billingRepo) CreateExecution(log *models.BillingExecutionLog) error {
	return r.db.Create(log).Error
}

func (r *billingRepo) UpdateExecution(log *models.BillingExecutionLog) error {
	return r.db.Save(log).Error
}

func (r *billingRepo) GetExecutionByBatchID(batchID string) (*models.BillingExecutionLog, error) {
	var log models.BillingExecutionLog
	err := r.db.First(&log, "batch_id = ?", batchID).Error
	return &log, err
}

func (r *billingRepo) CreateMessage(msg *models.BillingMessage) error {
	return r.db.Create(msg).Error
}

func (r *billingRepo) UpdateMessage(msg *models.BillingMessage) error {
	return r.db.Save(msg).Error
}

func (r *billingRepo) MessagesByExecution(executionID uuid.UUID) ([]models.BillingMessage, error) {
	var messages []models.BillingMessage
	err := r.db.
		Where("execution_id = ?", executionID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}
