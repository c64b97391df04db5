package app

import (
	"context"
	"fmt"
	"time"

	"github.com/m3rciful/anonrelay/core/bootstrap"
	corecmd "github.com/m3rciful/anonrelay/core/cmd"
	coreconfig "github.com/m3rciful/anonrelay/core/config"
	tg "github.com/m3rciful/anonrelay/core/telegram"
	"github.com/m3rciful/anonrelay/core/telegram/router"
	"github.com/m3rciful/anonrelay/core/telegram/state"
	"github.com/m3rciful/anonrelay/internal/platform"
	"github.com/m3rciful/anonrelay/internal/relay"

	tele "gopkg.in/telebot.v4"
)

const metricsShutdownTimeout = 5 * time.Second

// Config wraps the core configuration for cmd.Run.
type Config struct {
	*coreconfig.Config
}

// CoreConfig implements cmd.ConfigCarrier.
func (c Config) CoreConfig() *coreconfig.Config { return c.Config }

// LoadConfig reads the configuration for cmd.Run.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return Config{Config: cfg}, nil
}

// App wires the relay to the Telegram runtime.
type App struct {
	cfg      *coreconfig.Config
	infra    *bootstrap.Result
	bot      *tele.Bot
	relay    *relay.Relay
	handlers *platform.Handlers
	registry *tg.Registry
}

// Bootstrap builds the App for cmd.Run.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	return New(carrier.CoreConfig())
}

// New initializes infrastructure, the bot client and the relay.
func New(cfg *coreconfig.Config) (*App, error) {
	infra, err := bootstrap.Run(bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}

	bot, err := tg.NewBot(cfg)
	if err != nil {
		return nil, err
	}

	opts := relay.OptionsFrom(cfg)
	opts.Sessions = state.NewMemoryManager()
	r := relay.New(platform.NewOutbound(bot), opts)

	h := platform.NewHandlers(r)
	reg := tg.NewRegistry()
	if err := h.Register(reg); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}

	return &App{
		cfg:      cfg,
		infra:    infra,
		bot:      bot,
		relay:    r,
		handlers: h,
		registry: reg,
	}, nil
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.registry)
	routes = append(routes, router.CallbackRoute(a.registry))
	routes = append(routes, router.MessageRoutes(a.handlers.Message)...)

	return tg.RunOptions{
		Config:   a.cfg,
		Registry: a.registry,
		Bot:      a.bot,
		Routes:   routes,
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			a.relay.Close()
			shutdownCtx, cancel := context.WithTimeout(ctx, metricsShutdownTimeout)
			defer cancel()
			return a.infra.Metrics.Shutdown(shutdownCtx)
		},
	}, nil
}
