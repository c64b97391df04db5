package relay

import (
	"context"
	"log/slog"

	"github.com/m3rciful/anonrelay/core/logger"
	"github.com/m3rciful/anonrelay/core/metrics"
	"github.com/m3rciful/anonrelay/core/telegram/state"
)

// Outcome is the result of an admin-chat message passing through the ReplyRouter.
type Outcome int

const (
	// OutcomeIgnored means the admin had no reply target.
	OutcomeIgnored Outcome = iota
	OutcomeDelivered
	// OutcomeFailed keeps the admin in reply mode so they can retry.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeFailed:
		return "fail"
	default:
		return "ignored"
	}
}

// ReplyRouter tracks which user each admin answers and delivers the next
// admin-chat message to that user.
type ReplyRouter struct {
	admin    int64
	sessions state.Manager
	out      Outbound
}

// NewReplyRouter constructs a router. A nil sessions store gets an in-memory one.
func NewReplyRouter(adminChatID int64, sessions state.Manager, out Outbound) *ReplyRouter {
	if sessions == nil {
		sessions = state.NewMemoryManager()
	}
	return &ReplyRouter{admin: adminChatID, sessions: sessions, out: out}
}

// SelectTarget points adminID at userID. Last selection wins.
func (r *ReplyRouter) SelectTarget(ctx context.Context, originChatID, adminID, userID int64) error {
	if originChatID != r.admin {
		return ErrForeignChat
	}
	prev := r.sessions.Await(adminID, userID)
	attrs := []slog.Attr{
		slog.Int64("admin_id", adminID),
		slog.Int64("target_id", userID),
	}
	if prev.State == state.StateAwaitingReply && prev.Target != userID {
		attrs = append(attrs, slog.Int64("replaced_target_id", prev.Target))
	}
	logger.Info(ctx, logger.CompReply, "reply.select", attrs...)
	return nil
}

// Cancel returns adminID to idle.
func (r *ReplyRouter) Cancel(adminID int64) {
	r.sessions.Clear(adminID)
}

// Target returns the user adminID is answering, if any.
func (r *ReplyRouter) Target(adminID int64) (int64, bool) {
	s := r.sessions.Get(adminID)
	return s.Target, s.State == state.StateAwaitingReply
}

// ConsumeMessage delivers c to the selected target of adminID.
func (r *ReplyRouter) ConsumeMessage(ctx context.Context, adminID int64, c Content) Outcome {
	target, ok := r.Target(adminID)
	if !ok {
		metrics.Replies.WithLabelValues(OutcomeIgnored.String()).Inc()
		return OutcomeIgnored
	}

	attrs := []slog.Attr{
		slog.Int64("admin_id", adminID),
		slog.Int64("target_id", target),
		slog.String("kind", c.Kind.String()),
	}
	op, err := r.deliver(ctx, target, c)
	if err != nil {
		logSendFailure(ctx, logger.CompReply, op, err, attrs...)
		metrics.Replies.WithLabelValues(OutcomeFailed.String()).Inc()
		return OutcomeFailed
	}

	// A newer selection made while sending stays in place.
	r.sessions.ClearIf(adminID, target)
	metrics.Replies.WithLabelValues(OutcomeDelivered.String()).Inc()
	logger.Info(ctx, logger.CompReply, "reply.delivered",
		append(attrs, slog.String("outcome", OutcomeDelivered.String()))...,
	)
	return OutcomeDelivered
}

func (r *ReplyRouter) deliver(ctx context.Context, target int64, c Content) (string, error) {
	switch c.Kind {
	case KindText:
		return opSendText, r.out.SendText(ctx, target, TextReplyPrefix+c.Text, nil)
	case KindPhoto:
		return opSendMedia, r.out.SendMedia(ctx, target, c, TextReplyPrefix+c.Caption, nil)
	case KindVideo:
		return opSendMedia, r.out.SendMedia(ctx, target, c, TextReplyPrefix+c.Caption, nil)
	case KindDocument:
		return opSendMedia, r.out.SendMedia(ctx, target, c, TextReplyPrefix+c.Caption, nil)
	case KindAudio:
		return opSendMedia, r.out.SendMedia(ctx, target, c, TextReplyPrefix+c.Caption, nil)
	case KindVoice:
		return opSendMedia, r.out.SendMedia(ctx, target, c, TextReplyPrefix+c.Caption, nil)
	case KindAnimation:
		return opSendMedia, r.out.SendMedia(ctx, target, c, TextReplyPrefix+c.Caption, nil)
	case KindSticker:
		return opSendMedia, r.out.SendMedia(ctx, target, c, "", nil)
	case KindVideoNote:
		return opSendMedia, r.out.SendMedia(ctx, target, c, "", nil)
	case KindUnknown:
		return opSendMedia, ErrUnsupportedContent
	default:
		return opSendMedia, ErrUnsupportedContent
	}
}
