package relay

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/anonrelay/core/config"
	"github.com/m3rciful/anonrelay/core/logger"
	"github.com/m3rciful/anonrelay/core/metrics"
	"github.com/m3rciful/anonrelay/core/telegram/helpers"
	"github.com/m3rciful/anonrelay/core/telegram/state"
)

// Options configures New.
type Options struct {
	AdminChatID int64
	// AlbumMode is coreconfig.AlbumModeBuffer (default) or coreconfig.AlbumModeNotifyOnce.
	AlbumMode    string
	FlushDelay   time.Duration
	SeenGroupTTL time.Duration
	Location     *time.Location
	Scheduler    Scheduler
	Sessions     state.Manager
}

// OptionsFrom maps the relay section of cfg onto Options.
func OptionsFrom(cfg *coreconfig.Config) Options {
	return Options{
		AdminChatID:  cfg.Telegram.AdminChatID,
		AlbumMode:    cfg.Relay.AlbumMode,
		FlushDelay:   cfg.Relay.AlbumFlushDelay(),
		SeenGroupTTL: cfg.Relay.SeenGroupTTL(),
		Location:     cfg.Relay.Location(),
	}
}

// Relay classifies inbound traffic and owns the album and reply state.
type Relay struct {
	out   Outbound
	admin int64
	loc   *time.Location

	albums  *Aggregator
	seen    *SeenGroups
	replies *ReplyRouter
}

// New constructs a Relay writing to out.
func New(out Outbound, opts Options) *Relay {
	r := &Relay{
		out:     out,
		admin:   opts.AdminChatID,
		loc:     opts.Location,
		replies: NewReplyRouter(opts.AdminChatID, opts.Sessions, out),
	}
	if opts.AlbumMode == coreconfig.AlbumModeNotifyOnce {
		r.seen = NewSeenGroups(opts.SeenGroupTTL)
	} else {
		r.albums = NewAggregator(out, AggregatorOptions{
			AdminChatID: opts.AdminChatID,
			Delay:       opts.FlushDelay,
			Location:    opts.Location,
			Scheduler:   opts.Scheduler,
		})
	}
	return r
}

// Replies exposes the reply router.
func (r *Relay) Replies() *ReplyRouter { return r.replies }

// HandleMessage dispatches m: album part first, then admin chat, then single relay.
// Delivery errors are logged and never returned.
func (r *Relay) HandleMessage(ctx context.Context, m Message) {
	switch {
	case m.GroupID != "":
		metrics.Inbound.WithLabelValues("album").Inc()
		r.ack(ctx, m.ChatID)
		r.albumPart(ctx, m)
	case m.ChatID == r.admin:
		metrics.Inbound.WithLabelValues("admin").Inc()
		r.adminMessage(ctx, m)
	default:
		metrics.Inbound.WithLabelValues("single").Inc()
		r.ack(ctx, m.ChatID)
		r.single(ctx, m)
	}
}

func (r *Relay) ack(ctx context.Context, chatID int64) {
	if err := r.out.SendText(ctx, chatID, TextAck, nil); err != nil {
		logSendFailure(ctx, logger.CompInbound, opSendText, err, slog.String("step", "ack"))
	}
}

func (r *Relay) albumPart(ctx context.Context, m Message) {
	key := AlbumKey{ChatID: m.ChatID, GroupID: m.GroupID}
	if r.seen != nil {
		r.albumPartNotifyOnce(ctx, key, m)
		return
	}

	part := Part{
		Key:       key,
		Caption:   m.Caption,
		MessageID: m.MessageID,
		SentAt:    m.SentAt,
		UserID:    m.SenderID,
	}
	if m.Media.Kind.InAlbum() && m.Media.FileID != "" {
		part.Item = &MediaItem{Kind: m.Media.Kind, FileID: m.Media.FileID}
	}
	r.albums.OnPart(ctx, part)
}

func (r *Relay) albumPartNotifyOnce(ctx context.Context, key AlbumKey, m Message) {
	if err := r.out.CopyMessage(ctx, r.admin, m.ChatID, m.MessageID); err != nil {
		logSendFailure(ctx, logger.CompAlbum, opCopyMessage, err, slog.String("group_id", key.GroupID))
	}
	if !r.seen.MarkFirst(key) {
		return
	}
	body := m.Caption
	if body == "" {
		body = TextPlaceholderAlbum
	}
	text := notification(TextHeaderAlbum, m.SentAt, r.loc, body)
	if err := r.out.SendText(ctx, r.admin, text, &Keyboard{UserID: m.SenderID}); err != nil {
		logSendFailure(ctx, logger.CompAlbum, opSendText, err, slog.String("group_id", key.GroupID))
	}
}

func (r *Relay) adminMessage(ctx context.Context, m Message) {
	var reply string
	switch r.replies.ConsumeMessage(ctx, m.SenderID, ContentOf(m)) {
	case OutcomeDelivered:
		reply = TextDelivered
	case OutcomeFailed:
		reply = TextFailed
	case OutcomeIgnored:
		return
	}
	if err := r.out.SendText(ctx, m.ChatID, reply, nil); err != nil {
		logSendFailure(ctx, logger.CompReply, opSendText, err, slog.String("step", "confirm"))
	}
}

func (r *Relay) single(ctx context.Context, m Message) {
	if err := r.out.CopyMessage(ctx, r.admin, m.ChatID, m.MessageID); err != nil {
		logSendFailure(ctx, logger.CompInbound, opCopyMessage, err)
	}

	body := m.Text
	if body == "" {
		body = m.Caption
	}
	if body == "" {
		body = TextPlaceholderFile
	}
	text := notification(TextHeaderSingle, m.SentAt, r.loc, body)
	if err := r.out.SendText(ctx, r.admin, text, &Keyboard{UserID: m.SenderID}); err != nil {
		logSendFailure(ctx, logger.CompInbound, opSendText, err)
		return
	}
	logger.Debug(ctx, logger.CompInbound, "message.relayed", slog.String("status", "ok"))
}

// HandleCallback applies a reply or cancel button press and returns the answer to show.
func (r *Relay) HandleCallback(ctx context.Context, cb Callback) CallbackAnswer {
	switch cb.Action {
	case ActionReply:
		userID, err := strconv.ParseInt(strings.TrimSpace(cb.Payload), 10, 64)
		if err != nil {
			logger.Debug(ctx, logger.CompReply, "reply.bad_payload", slog.String("payload", logger.SanitizeLimit(cb.Payload, 32)))
			return CallbackAnswer{}
		}
		if err := r.replies.SelectTarget(ctx, cb.ChatID, cb.UserID, userID); err != nil {
			return CallbackAnswer{Text: TextForeignChat, Alert: true}
		}
		if err := r.out.SendText(ctx, cb.ChatID, TextReplyHint, nil); err != nil {
			logSendFailure(ctx, logger.CompReply, opSendText, err, slog.String("step", "hint"))
		}
		return CallbackAnswer{Text: TextReplyMode}
	case ActionCancel:
		r.replies.Cancel(cb.UserID)
		return CallbackAnswer{Text: TextCancelled}
	default:
		return CallbackAnswer{}
	}
}

// Close stops pending album flushes. Buffered parts are dropped.
func (r *Relay) Close() {
	if r.albums == nil {
		return
	}
	if dropped := r.albums.Close(); dropped > 0 {
		logger.Warn(context.Background(), logger.CompAlbum, "album.dropped", slog.Int("albums", dropped))
	}
}

func notification(header string, at time.Time, loc *time.Location, body string) string {
	return header + "\n🕓 " + helpers.FormatStamp(at, loc) + "\n\n" + body
}
