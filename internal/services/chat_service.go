package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/pricing"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/render"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/repositories"
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/whatsapp"
)

// ChatService runs the inbound-webhook conversation state machine.
type ChatService struct {
	clientRepo  repositories.ClientRepo
	sessionRepo repositories.SessionRepo
	settings    repositories.SettingsRepo
	dedup       repositories.DedupStore
	dispatcher  Dispatcher
	intents     IntentMatcher
	panelURL    string
}

func NewChatService(
	clientRepo repositories.ClientRepo,
	sessionRepo repositories.SessionRepo,
	settings repositories.SettingsRepo,
	dedup repositories.DedupStore,
	dispatcher Dispatcher,
	panelURL string,
) *ChatService {
	return &ChatService{
		clientRepo:  clientRepo,
		sessionRepo: sessionRepo,
		settings:    settings,
		dedup:       dedup,
		dispatcher:  dispatcher,
		intents:     NewIntentMatcher(),
		panelURL:    panelURL,
	}
}

// ProcessInbound handles one webhook delivery. Errors are returned for
// logging only; the HTTP handler acknowledges the provider regardless, so
// a failing event is never retried into the same failure.
func (s *ChatService) ProcessInbound(ctx context.Context, payload *whatsapp.WebhookPayload) error {
	msg := payload.FirstMessage()
	if msg == nil {
		return nil // status update or unknown event shape, nothing to do
	}

	// Atomic insert-if-absent: a duplicate delivery (provider retry or a
	// concurrent copy) loses the conditional write and is dropped here.
	first, err := s.dedup.MarkProcessed(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if !first {
		log.Debug().Str("message_id", msg.ID).Msg("duplicate inbound message ignored")
		return nil
	}

	phone := whatsapp.Normalize(msg.From)
	if phone == "" {
		return nil
	}
	content := msg.Content()

	client, err := s.clientRepo.FindByPhone(phone)
	if err != nil {
		return fmt.Errorf("resolve client: %w", err)
	}

	name := payload.SenderName()
	if client != nil {
		name = client.Name
	}
	if name == "" {
		name = phone
	}

	session, created, err := s.sessionRepo.GetOrCreate(phone, name)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if created {
		log.Info().Str("phone", phone).Msg("new chat session")
	}

	// A closed conversation reopens as fresh bot-handled
	if session.Status == models.SessionStatusClosed {
		if err := s.sessionRepo.UpdateStatus(phone, models.SessionStatusBot); err != nil {
			return fmt.Errorf("reopen session: %w", err)
		}
		session.Status = models.SessionStatusBot
	}

	if err := s.sessionRepo.RecordInbound(session, content); err != nil {
		return fmt.Errorf("record inbound: %w", err)
	}

	settings, err := s.settings.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	// Automation suppressed: operator engaged, customer already queued for
	// one, or the bot is switched off globally.
	if !settings.ChatBotEnabled ||
		session.Status == models.SessionStatusHuman ||
		session.Status == models.SessionStatusWaiting {
		return nil
	}

	intent := s.intents.Match(content)

	if intent == IntentHuman {
		if err := s.sessionRepo.UpdateStatus(phone, models.SessionStatusWaiting); err != nil {
			return fmt.Errorf("handoff transition: %w", err)
		}
		return s.reply(phone, humanHandoffMessage, nil, nil)
	}

	body, buttons, vars := s.composeReply(intent, client, settings)
	return s.reply(phone, body, buttons, vars)
}

func (s *ChatService) reply(phone, body string, buttons []whatsapp.Button, vars map[string]string) error {
	rendered := render.Render(body, vars)
	if rendered == "" {
		return nil
	}

	result := s.dispatcher.Send(phone, rendered, buttons)
	if !result.Success {
		log.Error().Str("phone", phone).Str("response", result.Response).Msg("failed to send reply")
	}

	if err := s.sessionRepo.RecordOutbound(phone, models.AuthorBot, rendered); err != nil {
		return fmt.Errorf("record outbound: %w", err)
	}
	return nil
}

// composeReply picks the menu branch for the matched intent, personalized
// for registered clients, quote-oriented for unknown prospects.
func (s *ChatService) composeReply(intent Intent, client *models.Client, settings *models.Settings) (string, []whatsapp.Button, map[string]string) {
	if client == nil {
		switch intent {
		case IntentPanel, IntentQuote, IntentSchedule:
			return prospectQuoteMessage, nil, nil
		default:
			return prospectWelcomeMessage, []whatsapp.Button{
				{ID: "orcamento", Title: "Pedir orçamento"},
				{ID: "5", Title: "Falar com atendente"},
			}, nil
		}
	}

	vars := s.personalization(client, settings)

	switch intent {
	case IntentPanel:
		var buttons []whatsapp.Button
		if s.panelURL != "" {
			buttons = []whatsapp.Button{{Title: "Abrir painel", URL: s.panelURL}}
		}
		return panelMessage, buttons, vars
	case IntentSchedule:
		return scheduleMessage, nil, vars
	default:
		return welcomeMessage, []whatsapp.Button{
			{ID: "1", Title: "Meu painel"},
			{ID: "2", Title: "Agendar visita"},
			{ID: "5", Title: "Falar com atendente"},
		}, vars
	}
}

func (s *ChatService) personalization(client *models.Client, settings *models.Settings) map[string]string {
	vars := map[string]string{
		"nome":       client.Name,
		"valor":      pricing.FormatAmount(pricing.CalculateFee(client, settings)),
		"pix":        settings.PixKey,
		"favorecido": settings.PayeeName,
		"status":     client.PaymentStatus,
	}
	if client.DueDate != nil {
		vars["vencimento"] = client.DueDate.Format("02/01")
	}
	return vars
}

// OperatorReply pushes an operator-authored message into a session: the
// conversation flips to human handling and the unread counter resets.
func (s *ChatService) OperatorReply(phone, text string) error {
	phone = whatsapp.Normalize(phone)
	session, err := s.sessionRepo.Get(phone)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	result := s.dispatcher.Send(phone, text, nil)
	if !result.Success {
		return fmt.Errorf("dispatch failed: %s", result.Response)
	}

	if session.Status != models.SessionStatusHuman {
		if err := s.sessionRepo.UpdateStatus(phone, models.SessionStatusHuman); err != nil {
			return fmt.Errorf("transition to human: %w", err)
		}
	}
	if err := s.sessionRepo.ResetUnread(phone); err != nil {
		return err
	}
	return s.sessionRepo.RecordOutbound(phone, models.AuthorOperator, text)
}

// CloseSession ends an operator conversation; the next inbound message
// reopens it as bot-handled.
func (s *ChatService) CloseSession(phone string) error {
	return s.sessionRepo.UpdateStatus(whatsapp.Normalize(phone), models.SessionStatusClosed)
}

// Transcript returns a session with its messages for the operator dashboard.
func (s *ChatService) Transcript(phone string) (*models.ChatSession, []models.ChatMessage, error) {
	phone = whatsapp.Normalize(phone)
	session, err := s.sessionRepo.Get(phone)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.sessionRepo.Messages(phone)
	if err != nil {
		return nil, nil, err
	}
	return session, messages, nil
}

// Conversation copy. Placeholders go through the template renderer with the
// personalization variables.
const (
	welcomeMessage = `Olá {nome}! 👋 Sou o assistente da Piscina Limpa.

Sua mensalidade: R$ {valor} (vencimento {vencimento}).

Como posso ajudar?
1️⃣ Meu painel
2️⃣ Agendar visita
5️⃣ Falar com atendente`

	panelMessage = `Claro, {nome}! Acompanhe visitas, pagamentos e fotos da sua piscina pelo painel. 💧`

	scheduleMessage = `Perfeito, {nome}! Me diga o melhor dia e período (manhã/tarde) e confirmo a visita do técnico. 🗓️`

	humanHandoffMessage = `Certo! Já chamei um atendente — você será respondido por aqui em instantes. 🙋`

	prospectWelcomeMessage = `Olá! 👋 Somos a Piscina Limpa, cuidamos da sua piscina o mês inteiro.

Quer um orçamento? Me envie o volume da piscina (em litros) e seu bairro, ou escolha uma opção abaixo.`

	prospectQuoteMessage = `Ótimo! Para montar seu orçamento preciso de:
• Volume da piscina (litros)
• Bairro/endereço
• Piscina usa água de poço?

Pode mandar tudo em uma mensagem mesmo. 😉`
)
