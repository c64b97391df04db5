package router

import (
	tg "github.com/m3rciful/anonrelay/core/telegram"
	"github.com/m3rciful/anonrelay/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// messageEndpoints lists every non-command message update the bot relays.
// OnMedia covers photo, video, document, audio, voice, animation, sticker and video note.
var messageEndpoints = []string{
	tele.OnText,
	tele.OnMedia,
	tele.OnLocation,
	tele.OnVenue,
	tele.OnContact,
	tele.OnPoll,
	tele.OnDice,
}

// MessageRoutes binds handler to all inbound message kinds.
func MessageRoutes(handler tele.HandlerFunc) []tg.Route {
	if handler == nil {
		return nil
	}
	wrapped := func(c tele.Context) error {
		return handleWithSummary(c, "message", func() error { return handler(c) })
	}
	h := middleware.RecoverMiddleware(middleware.LoggerMiddleware(wrapped))

	routes := make([]tg.Route, 0, len(messageEndpoints))
	for _, ep := range messageEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: h})
	}
	return routes
}
