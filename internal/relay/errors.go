package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/anonrelay/core/logger"
	"github.com/m3rciful/anonrelay/core/metrics"
	"github.com/m3rciful/anonrelay/core/telegram/netutil"
)

var (
	// ErrForeignChat rejects reply selection outside the admin chat.
	ErrForeignChat = errors.New("relay: reply selection outside admin chat")
	// ErrUnsupportedContent is reported for content kinds that cannot be delivered as a reply.
	ErrUnsupportedContent = errors.New("relay: unsupported content kind")
)

// Outbound operation names used in logs and metrics.
const (
	opSendText       = "send_text"
	opSendMediaGroup = "send_media_group"
	opSendMedia      = "send_media"
	opCopyMessage    = "copy_message"
)

func logSendFailure(ctx context.Context, component, op string, err error, attrs ...slog.Attr) {
	kind := netutil.Classify(err)
	if errors.Is(err, ErrUnsupportedContent) {
		kind = "unsupported"
	}
	metrics.SendFailures.WithLabelValues(op, kind).Inc()

	base := []slog.Attr{
		slog.String("op", op),
		slog.String("status", "fail"),
		slog.String("error_kind", kind),
		slog.String("err", netutil.Redact(err)),
	}
	logger.Error(ctx, component, "send.failed", append(base, attrs...)...)
}
