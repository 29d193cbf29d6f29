package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// templateParamMaxLen caps each positional template parameter, per Cloud API limits.
const templateParamMaxLen = 1024

// buttonTitleMaxLen caps interactive button display text.
const buttonTitleMaxLen = 20

// Button is an outbound button. A non-empty URL makes it a call-to-action
// button; otherwise it is a quick reply identified by ID.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// SendResult reports the outcome of one dispatch attempt. Dispatch never
// returns an error; callers decide how to record failure.
type SendResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Response   string `json:"response,omitempty"`
}

// Client talks to the WhatsApp Cloud API (Official Business API).
// Documentation: https://developers.facebook.com/docs/whatsapp/cloud-api
type Client struct {
	baseURL     string
	phoneID     string // WhatsApp Business Phone Number ID
	accessToken string // Meta Business Access Token
	http        *http.Client
}

// NewClient creates a Cloud API client. Missing credentials are tolerated
// here and reported as a failed SendResult on the first send attempt.
func NewClient(accessToken, phoneID, apiVersion string) *Client {
	if apiVersion == "" {
		apiVersion = "v18.0"
	}
	return &Client{
		baseURL:     fmt.Sprintf("https://graph.facebook.com/%s/%s", apiVersion, phoneID),
		phoneID:     phoneID,
		accessToken: accessToken,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

// SendText sends a plain text message.
func (c *Client) SendText(to, body string) *SendResult {
	return c.post(textPayload(EnsureCountryCode(to), body))
}

// SendTemplate sends a pre-approved message template with positional text
// parameters, each individually length-capped.
func (c *Client) SendTemplate(to, name, lang string, params []string) *SendResult {
	return c.post(templatePayload(EnsureCountryCode(to), name, lang, params))
}

// Send dispatches body to the destination, choosing exactly one payload
// shape: a URL call-to-action if any button carries a URL (only the first
// such button is used), else up to three quick-reply buttons, else plain text.
func (c *Client) Send(to, body string, buttons []Button) *SendResult {
	return c.post(buildPayload(EnsureCountryCode(to), body, buttons))
}

func buildPayload(to, body string, buttons []Button) map[string]interface{} {
	for _, b := range buttons {
		if b.URL != "" {
			return ctaPayload(to, body, b)
		}
	}
	if len(buttons) > 0 {
		return buttonsPayload(to, body, buttons)
	}
	return textPayload(to, body)
}

func textPayload(to, body string) map[string]interface{} {
	return map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "text",
		"text": map[string]interface{}{
			"preview_url": false,
			"body":        body,
		},
	}
}

func ctaPayload(to, body string, button Button) map[string]interface{} {
	return map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type": "cta_url",
			"body": map[string]string{"text": body},
			"action": map[string]interface{}{
				"name": "cta_url",
				"parameters": map[string]string{
					"display_text": truncate(button.Title, buttonTitleMaxLen),
					"url":          button.URL,
				},
			},
		},
	}
}

func buttonsPayload(to, body string, buttons []Button) map[string]interface{} {
	if len(buttons) > 3 {
		buttons = buttons[:3]
	}
	replies := make([]map[string]interface{}, 0, len(buttons))
	for _, b := range buttons {
		replies = append(replies, map[string]interface{}{
			"type": "reply",
			"reply": map[string]string{
				"id":    b.ID,
				"title": truncate(b.Title, buttonTitleMaxLen),
			},
		})
	}
	return map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]interface{}{
			"type":   "button",
			"body":   map[string]string{"text": body},
			"action": map[string]interface{}{"buttons": replies},
		},
	}
}

func templatePayload(to, name, lang string, params []string) map[string]interface{} {
	if lang == "" {
		lang = "pt_BR"
	}
	components := []map[string]interface{}{}
	if len(params) > 0 {
		parameters := make([]map[string]string, 0, len(params))
		for _, p := range params {
			parameters = append(parameters, map[string]string{
				"type": "text",
				"text": truncate(p, templateParamMaxLen),
			})
		}
		components = append(components, map[string]interface{}{
			"type":       "body",
			"parameters": parameters,
		})
	}
	return map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
		"type":              "template",
		"template": map[string]interface{}{
			"name":       name,
			"language":   map[string]string{"code": lang},
			"components": components,
		},
	}
}

func (c *Client) post(payload map[string]interface{}) *SendResult {
	if c.accessToken == "" || c.phoneID == "" {
		return &SendResult{Success: false, Response: "missing WhatsApp credentials"}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return &SendResult{Success: false, Response: err.Error()}
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return &SendResult{Success: false, Response: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &SendResult{Success: false, Response: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	result := &SendResult{
		Success:    resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		Response:   string(respBody),
	}

	if !result.Success {
		log.Warn().Int("status", resp.StatusCode).Str("body", result.Response).Msg("Cloud API send failed")
	}
	return result
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
