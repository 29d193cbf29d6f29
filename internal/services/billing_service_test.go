package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/repositories"
)

type billingFixture struct {
	db         *gorm.DB
	service    *BillingService
	dispatcher *fakeDispatcher
	settings   repositories.SettingsRepo
	billing    repositories.BillingRepo
}

var billingNow = time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)

func setupBilling(t *testing.T, mutate func(*models.Settings)) *billingFixture {
	db := newTestDB(t)

	settingsRepo := repositories.NewSettingsRepo(db)
	settings := &models.Settings{
		Tiers:        []models.PriceTier{{Min: 0, Max: 50, Price: 120}, {Min: 51, Max: 100, Price: 180}},
		PixKey:       "financeiro@piscinalimpa.com.br",
		PayeeName:    "Piscina Limpa Ltda",
		BotEnabled:   true,
		DryRun:       true,
		LeadTimeDays: 3,
	}
	if mutate != nil {
		mutate(settings)
	}
	require.NoError(t, settingsRepo.Save(settings))

	dispatcher := &fakeDispatcher{}
	billingRepo := repositories.NewBillingRepo(db)
	service := NewBillingService(
		repositories.NewClientRepo(db),
		settingsRepo,
		billingRepo,
		dispatcher,
		"UTC",
	)
	service.now = func() time.Time { return billingNow }

	return &billingFixture{
		db:         db,
		service:    service,
		dispatcher: dispatcher,
		settings:   settingsRepo,
		billing:    billingRepo,
	}
}

func (f *billingFixture) createClient(t *testing.T, name, phone string, volume float64, due time.Time) *models.Client {
	client := &models.Client{
		Name:          name,
		Phone:         phone,
		PoolVolume:    volume,
		Plan:          models.PlanSimple,
		PaymentStatus: models.PaymentStatusPending,
		DueDate:       &due,
	}
	require.NoError(t, f.db.Create(client).Error)
	return client
}

func TestBillingRun_DryRun(t *testing.T) {
	f := setupBilling(t, nil)
	// Due exactly lead-time days ahead of the frozen clock
	f.createClient(t, "Ana", "5511988887777", 60, billingNow.AddDate(0, 0, 3))

	summary, err := f.service.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, "2026-09-10", summary.TargetDate)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Sent) // simulation counts toward sent
	assert.Equal(t, 0, summary.Ignored)
	assert.Equal(t, 0, summary.Failed)

	// Nothing left the building
	assert.Empty(t, f.dispatcher.messages)
	assert.Empty(t, f.dispatcher.templates)

	execution, rows, err := f.service.Execution(summary.BatchID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Equal(t, 1, execution.Sent)
	require.NotNil(t, execution.FinishedAt)

	require.Len(t, rows, 1)
	assert.Equal(t, models.BillingStatusSimulation, rows[0].Status)
	assert.Equal(t, 180.0, rows[0].Amount)
	assert.Contains(t, rows[0].Preview, "Ana")
	assert.Contains(t, rows[0].Preview, "180,00")
	assert.Contains(t, rows[0].Preview, "10/09")
	assert.Contains(t, rows[0].Preview, "financeiro@piscinalimpa.com.br")
}

func TestBillingRun_IgnoresOtherDueDates(t *testing.T) {
	f := setupBilling(t, nil)
	f.createClient(t, "Ana", "5511988887777", 60, billingNow.AddDate(0, 0, 3))
	f.createClient(t, "Bruno", "5511966665555", 40, billingNow.AddDate(0, 0, 10))
	f.createClient(t, "Carla", "5511955554444", 40, billingNow) // due today, not in 3 days

	summary, err := f.service.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 2, summary.Ignored)
}

func TestBillingRun_MissingPhoneAndZeroFee(t *testing.T) {
	f := setupBilling(t, nil)
	f.createClient(t, "SemFone", "", 60, billingNow.AddDate(0, 0, 3))
	f.createClient(t, "SemPiscina", "5511933332222", 0, billingNow.AddDate(0, 0, 3))

	summary, err := f.service.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 2, summary.Failed)

	_, rows, err := f.service.Execution(summary.BatchID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	reasons := []string{rows[0].Reason, rows[1].Reason}
	assert.Contains(t, reasons, "missing phone")
	assert.Contains(t, reasons, "zero fee")
}

func TestBillingRun_DisabledSkipsScheduledRun(t *testing.T) {
	f := setupBilling(t, func(s *models.Settings) { s.BotEnabled = false })
	f.createClient(t, "Ana", "5511988887777", 60, billingNow.AddDate(0, 0, 3))

	summary, err := f.service.Run(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, summary.Disabled)
	assert.Equal(t, 0, summary.Processed)

	var count int64
	require.NoError(t, f.db.Model(&models.BillingExecutionLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBillingRun_ManualOverridesDisabled(t *testing.T) {
	f := setupBilling(t, func(s *models.Settings) { s.BotEnabled = false })
	f.createClient(t, "Ana", "5511988887777", 60, billingNow.AddDate(0, 0, 3))

	summary, err := f.service.Run(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, summary.Disabled)
	assert.Equal(t, 1, summary.Sent)
}

func TestBillingRun_LiveSend(t *testing.T) {
	f := setupBilling(t, func(s *models.Settings) { s.DryRun = false })
	f.createClient(t, "Ana", "5511988887777", 60, billingNow.AddDate(0, 0, 3))

	summary, err := f.service.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)

	require.Len(t, f.dispatcher.messages, 1)
	assert.Equal(t, "5511988887777", f.dispatcher.messages[0].To)
	assert.Contains(t, f.dispatcher.messages[0].Body, "180,00")

	_, rows, err := f.service.Execution(summary.BatchID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.BillingStatusSent, rows[0].Status)
}

func TestBillingRun_LiveSendFailure(t *testing.T) {
	f := setupBilling(t, func(s *models.Settings) { s.DryRun = false })
	f.dispatcher.fail = true
	f.createClient(t, "Ana", "5511988887777", 60, billingNow.AddDate(0, 0, 3))

	summary, err := f.service.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 1, summary.Failed)

	_, rows, err := f.service.Execution(summary.BatchID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.BillingStatusFailed, rows[0].Status)
	assert.Contains(t, rows[0].Reason, "boom")
	assert.JSONEq(t, `{"status_code":500,"success":false}`, string(rows[0].ProviderResponse))
}

func TestBillingRun_ProviderTemplate(t *testing.T) {
	f := setupBilling(t, func(s *models.Settings) {
		s.DryRun = false
		s.ProviderTemplateName = "cobranca_mensal"
		s.ProviderTemplateLang = "pt_BR"
	})
	f.createClient(t, "Ana", "5511988887777", 60, billingNow.AddDate(0, 0, 3))

	summary, err := f.service.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)

	assert.Empty(t, f.dispatcher.messages)
	require.Len(t, f.dispatcher.templates, 1)
	tpl := f.dispatcher.templates[0]
	assert.Equal(t, "cobranca_mensal", tpl.Name)
	assert.Equal(t, "pt_BR", tpl.Lang)
	assert.Equal(t, []string{"Ana", "180,00", "10/09", "financeiro@piscinalimpa.com.br"}, tpl.Params)
}

func TestBillingRun_CustomTemplate(t *testing.T) {
	f := setupBilling(t, func(s *models.Settings) {
		s.MessageTemplate = "Oi {nome}, são R$ {valor} até {vencimento}."
	})
	f.createClient(t, "Ana", "5511988887777", 60, billingNow.AddDate(0, 0, 3))

	summary, err := f.service.Run(context.Background(), false)
	require.NoError(t, err)

	_, rows, err := f.service.Execution(summary.BatchID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Oi Ana, são R$ 180,00 até 10/09.", rows[0].Preview)
}
