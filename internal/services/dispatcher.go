package services

import (
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/whatsapp"
)

// Dispatcher abstracts the outbound messaging channel so services can be
// exercised against a fake in tests. *whatsapp.Client satisfies it.
type Dispatcher interface {
	Send(to, body string, buttons []whatsapp.Button) *whatsapp.SendResult
	SendTemplate(to, name, lang string, params []string) *whatsapp.SendResult
}
