package platform

import (
	"fmt"

	tg "github.com/m3rciful/anonrelay/core/telegram"
	"github.com/m3rciful/anonrelay/core/telegram/commands"
	tghelpers "github.com/m3rciful/anonrelay/core/telegram/helpers"
	"github.com/m3rciful/anonrelay/internal/relay"

	tele "gopkg.in/telebot.v4"
)

// Handlers binds telebot updates to a relay.Relay.
type Handlers struct {
	relay *relay.Relay
}

// NewHandlers constructs handlers for r.
func NewHandlers(r *relay.Relay) *Handlers {
	return &Handlers{relay: r}
}

// Register adds the bot commands and reply keyboard callbacks to reg.
func (h *Handlers) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", commands.Command{Handler: h.Start, Description: "start"})
	reg.RegisterCommand("/here", commands.Command{Handler: h.Here, Description: "show chat id", Hidden: true})

	for _, key := range []string{UniqueReply, UniqueCancel} {
		if err := reg.RegisterCallback(key, h.Callback); err != nil {
			return err
		}
	}
	// Stale or foreign buttons still get an answer so the client stops spinning.
	reg.SetCallbackNotFound(func(c tele.Context) error {
		return c.Respond()
	})
	return nil
}

// Start greets the user.
func (h *Handlers) Start(c tele.Context) error {
	return c.Send(relay.TextStart)
}

// Here reports the current chat id, used to find the admin chat id.
func (h *Handlers) Here(c tele.Context) error {
	return c.Send(fmt.Sprintf("chat id: %d", c.Chat().ID))
}

// Message relays any non-command message.
func (h *Handlers) Message(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	h.relay.HandleMessage(ctx, MessageFrom(c.Message()))
	return nil
}

// Callback handles the reply and cancel buttons.
func (h *Handlers) Callback(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	answer := h.relay.HandleCallback(ctx, CallbackFrom(c.Callback()))
	return c.Respond(&tele.CallbackResponse{Text: answer.Text, ShowAlert: answer.Alert})
}
