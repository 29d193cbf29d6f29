package whatsapp

// Meta-standard WhatsApp Cloud API webhook types.
// Documentation: https://developers.facebook.com/docs/whatsapp/cloud-api/webhooks

// WebhookPayload is the top-level webhook delivery.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents one business account entry.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue holds the message data.
type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata about the receiving phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender's WhatsApp contact info.
type Contact struct {
	Profile ContactProfile `json:"profile"`
	WaID    string         `json:"wa_id"`
}

// ContactProfile has the display name.
type ContactProfile struct {
	Name string `json:"name"`
}

// Message represents an incoming message.
type Message struct {
	From        string          `json:"from"`
	ID          string          `json:"id"`
	Timestamp   string          `json:"timestamp"`
	Type        string          `json:"type"` // text, interactive, button, image, ...
	Text        *TextContent    `json:"text,omitempty"`
	Interactive *Interactive    `json:"interactive,omitempty"`
	Button      *ButtonContent  `json:"button,omitempty"`
}

// TextContent holds a text message body.
type TextContent struct {
	Body string `json:"body"`
}

// Interactive holds an interactive message reply.
type Interactive struct {
	Type        string       `json:"type"`
	ButtonReply *ButtonReply `json:"button_reply,omitempty"`
}

// ButtonReply identifies which quick-reply button the customer tapped.
type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ButtonContent is a reply to a template quick-reply button.
type ButtonContent struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

// Status represents a message delivery status update.
type Status struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// FirstMessage returns the first inbound message of the payload, or nil.
// Cloud API deliveries carry at most one message per call.
func (p *WebhookPayload) FirstMessage() *Message {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Messages) > 0 {
				return &change.Value.Messages[0]
			}
		}
	}
	return nil
}

// SenderName returns the sender's display name, if the payload carries one.
func (p *WebhookPayload) SenderName() string {
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Contacts) > 0 {
				return change.Value.Contacts[0].Profile.Name
			}
		}
	}
	return ""
}

// Content returns the text the customer effectively sent: a tapped button id
// takes precedence over free text.
func (m *Message) Content() string {
	if m.Interactive != nil && m.Interactive.ButtonReply != nil {
		return m.Interactive.ButtonReply.ID
	}
	if m.Button != nil {
		if m.Button.Payload != "" {
			return m.Button.Payload
		}
		return m.Button.Text
	}
	if m.Text != nil {
		return m.Text.Body
	}
	return ""
}
