package repositories

import (
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/whatsapp"
	"gorm.io/gorm"
)

type ClientRepo interface {
	GetByID(id string) (*models.Client, error)
	GetBillableClients() ([]models.Client, error)
	FindByPhone(phone string) (*models.Client, error)
	Update(client *models.Client) error
}

type clientRepo struct {
	db *gorm.DB
}

func NewClientRepo(db *gorm.DB) ClientRepo {
	return &clientRepo{db: db}
}

func (r *clientRepo) GetByID(id string) (*models.Client, error) {
	var client models.Client
	err := r.db.First(&client, "id = ?", id).Error
	return &client, err
}

// GetBillableClients returns clients with outstanding payment status
func (r *clientRepo) GetBillableClients() ([]models.Client, error) {
	var clients []models.Client
	err := r.db.
		Where("payment_status IN ?", []string{models.PaymentStatusPending, models.PaymentStatusOverdue}).
		Order("created_at ASC").
		Find(&clients).Error
	return clients, err
}

// FindByPhone resolves a sender to a known client by trailing 9-digit
// suffix, tolerating country-code prefix variance. Two clients sharing a
// suffix resolve to the first match in creation order; intended behavior
// under collision is unspecified, so no tie-break is attempted.
// Returns (nil, nil) when the sender is unknown.
func (r *clientRepo) FindByPhone(phone string) (*models.Client, error) {
	var clients []models.Client
	if err := r.db.Where("phone <> ''").Order("created_at ASC").Find(&clients).Error; err != nil {
		return nil, err
	}
	for i := range clients {
		if whatsapp.SameNumber(clients[i].Phone, phone) {
			return &clients[i], nil
		}
	}
	return nil, nil
}

func (r *clientRepo) Update(client *models.Client) error {
	return r.db.Save(client).Error
}
