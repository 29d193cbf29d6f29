package repositories

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Client{},
		&models.Settings{},
		&models.ChatSession{},
		&models.ChatMessage{},
		&models.ProcessedMessage{},
		&models.BillingExecutionLog{},
		&models.BillingMessage{},
	)
	require.NoError(t, err)

	return db
}
