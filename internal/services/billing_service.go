package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/pricing"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/render"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/repositories"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/whatsapp"
)

// defaultReminderTemplate is used when no template has been configured yet.
const defaultReminderTemplate = `Olá {nome}! 💧 Sua mensalidade da Piscina Limpa de R$ {valor} vence em {vencimento}.

Pague via Pix: {pix}
Favorecido: {favorecido}

Qualquer dúvida é só responder por aqui!`

// RunSummary is the outcome of one batch run.
type RunSummary struct {
	BatchID    string `json:"batchId"`
	TargetDate string `json:"targetDate"`
	DryRun     bool   `json:"dryRun"`
	Disabled   bool   `json:"disabled,omitempty"`
	Processed  int    `json:"processed"`
	Sent       int    `json:"sent"`
	Ignored    int    `json:"ignored"`
	Failed     int    `json:"failed"`
}

// BillingService is the scheduled billing-reminder batch job.
type BillingService struct {
	clientRepo  repositories.ClientRepo
	settings    repositories.SettingsRepo
	billingRepo repositories.BillingRepo
	dispatcher  Dispatcher
	location    *time.Location

	now func() time.Time // injectable clock for tests
}

func NewBillingService(
	clientRepo repositories.ClientRepo,
	settings repositories.SettingsRepo,
	billingRepo repositories.BillingRepo,
	dispatcher Dispatcher,
	timezone string,
) *BillingService {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.Warn().Str("timezone", timezone).Msg("unknown timezone, falling back to UTC")
		loc = time.UTC
	}
	return &BillingService{
		clientRepo:  clientRepo,
		settings:    settings,
		billingRepo: billingRepo,
		dispatcher:  dispatcher,
		location:    loc,
		now:         time.Now,
	}
}

// Location is the business's civil-calendar timezone.
func (s *BillingService) Location() *time.Location {
	return s.location
}

// Run executes one reminder batch. Per-client failures are recorded on their
// audit rows and never abort the loop; only infrastructure errors (store
// unreachable, settings unloadable) surface as a run-level failure.
func (s *BillingService) Run(ctx context.Context, manual bool) (*RunSummary, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if !settings.BotEnabled && !manual {
		log.Info().Msg("billing bot disabled, skipping scheduled run")
		return &RunSummary{Disabled: true}, nil
	}

	// Civil calendar day in the business timezone; comparing pure date
	// strings avoids timezone drift between server and business days.
	today := s.now().In(s.location)
	targetDate := today.AddDate(0, 0, settings.LeadTimeDays).Format("2006-01-02")

	execution := &models.BillingExecutionLog{
		BatchID:    "run-" + today.Format("20060102-150405"),
		Status:     models.ExecutionStatusRunning,
		TargetDate: targetDate,
		DryRun:     settings.DryRun,
		Manual:     manual,
	}
	if err := s.billingRepo.CreateExecution(execution); err != nil {
		return nil, fmt.Errorf("open execution log: %w", err)
	}

	summary := &RunSummary{
		BatchID:    execution.BatchID,
		TargetDate: targetDate,
		DryRun:     settings.DryRun,
	}

	defer func() {
		if r := recover(); r != nil {
			execution.Status = models.ExecutionStatusError
			execution.Error = fmt.Sprintf("panic: %v", r)
			s.finish(execution, summary)
			panic(r)
		}
	}()

	clients, err := s.clientRepo.GetBillableClients()
	if err != nil {
		execution.Status = models.ExecutionStatusError
		execution.Error = err.Error()
		s.finish(execution, summary)
		return nil, fmt.Errorf("load billable clients: %w", err)
	}

	log.Info().
		Str("batch_id", execution.BatchID).
		Str("target_date", targetDate).
		Bool("dry_run", settings.DryRun).
		Int("candidates", len(clients)).
		Msg("billing run started")

	for i := range clients {
		s.processClient(&clients[i], settings, execution, targetDate, summary)
	}

	execution.Status = models.ExecutionStatusCompleted
	s.finish(execution, summary)

	log.Info().
		Str("batch_id", execution.BatchID).
		Int("processed", summary.Processed).
		Int("sent", summary.Sent).
		Int("ignored", summary.Ignored).
		Int("failed", summary.Failed).
		Msg("billing run completed")

	return summary, nil
}

func (s *BillingService) finish(execution *models.BillingExecutionLog, summary *RunSummary) {
	now := s.now()
	execution.Processed = summary.Processed
	execution.Sent = summary.Sent
	execution.Ignored = summary.Ignored
	execution.Failed = summary.Failed
	execution.FinishedAt = &now
	if err := s.billingRepo.UpdateExecution(execution); err != nil {
		log.Error().Err(err).Str("batch_id", execution.BatchID).Msg("failed to close execution log")
	}
}

// processClient evaluates one client. Its own panic is contained so a bad
// row can never take the batch down with it.
func (s *BillingService) processClient(client *models.Client, settings *models.Settings, execution *models.BillingExecutionLog, targetDate string, summary *RunSummary) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("client_id", client.ID.String()).Msg("client processing panicked")
			summary.Failed++
		}
	}()

	row := &models.BillingMessage{
		ExecutionID: execution.ID,
		ClientID:    client.ID,
		ClientName:  client.Name,
		Phone:       client.Phone,
		Status:      models.BillingStatusAnalyzing,
	}
	if err := s.billingRepo.CreateMessage(row); err != nil {
		log.Error().Err(err).Str("client_id", client.ID.String()).Msg("failed to open message log row")
		summary.Failed++
		return
	}
	summary.Processed++

	if client.DueDate == nil || client.DueDate.In(s.location).Format("2006-01-02") != targetDate {
		row.Status = models.BillingStatusIgnored
		row.Reason = "due date does not match target"
		summary.Ignored++
		s.saveRow(row)
		return
	}

	if client.Phone == "" {
		row.Status = models.BillingStatusFailed
		row.Reason = "missing phone"
		summary.Failed++
		s.saveRow(row)
		return
	}

	fee := pricing.CalculateFee(client, settings)
	row.Amount = fee
	if fee <= 0 {
		row.Status = models.BillingStatusFailed
		row.Reason = "zero fee"
		summary.Failed++
		s.saveRow(row)
		return
	}

	dueShort := client.DueDate.In(s.location).Format("02/01")
	vars := map[string]string{
		"nome":       client.Name,
		"valor":      pricing.FormatAmount(fee),
		"vencimento": dueShort,
		"pix":        settings.PixKey,
		"favorecido": settings.PayeeName,
		"status":     client.PaymentStatus,
	}

	template := settings.MessageTemplate
	if template == "" {
		template = defaultReminderTemplate
	}
	rendered := render.Render(template, vars)
	row.Preview = rendered

	if settings.DryRun {
		// Rehearsal, not a failure: counts toward sent for reporting
		row.Status = models.BillingStatusSimulation
		summary.Sent++
		s.saveRow(row)
		return
	}

	result := s.dispatch(client.Phone, rendered, settings, vars)
	row.ProviderResponse = datatypes.JSON(fmt.Sprintf(`{"status_code":%d,"success":%t}`, result.StatusCode, result.Success))
	if result.Response != "" {
		row.Reason = truncateReason(result.Response)
	}

	if result.Success {
		row.Status = models.BillingStatusSent
		row.Reason = ""
		summary.Sent++
	} else {
		row.Status = models.BillingStatusFailed
		summary.Failed++
	}
	s.saveRow(row)
}

// dispatch prefers an approved provider template (positional parameters)
// over free text when one is configured.
func (s *BillingService) dispatch(phone, rendered string, settings *models.Settings, vars map[string]string) *whatsapp.SendResult {
	if settings.ProviderTemplateName != "" {
		params := []string{vars["nome"], vars["valor"], vars["vencimento"], vars["pix"]}
		return s.dispatcher.SendTemplate(phone, settings.ProviderTemplateName, settings.ProviderTemplateLang, params)
	}
	return s.dispatcher.Send(phone, rendered, nil)
}

func (s *BillingService) saveRow(row *models.BillingMessage) {
	if err := s.billingRepo.UpdateMessage(row); err != nil {
		log.Error().Err(err).Str("client_id", row.ClientID.String()).Msg("failed to update message log row")
	}
}

func truncateReason(s string) string {
	if len(s) <= 500 {
		return s
	}
	return s[:500]
}

// Execution returns a run's audit record with its per-client rows.
func (s *BillingService) Execution(batchID string) (*models.BillingExecutionLog, []models.BillingMessage, error) {
	execution, err := s.billingRepo.GetExecutionByBatchID(batchID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.billingRepo.MessagesByExecution(execution.ID)
	if err != nil {
		return nil, nil, err
	}
	return execution, messages, nil
}
