package relay

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/m3rciful/anonrelay/core/logger"
	"github.com/m3rciful/anonrelay/core/metrics"
)

// DefaultFlushDelay is the album quiescence window.
const DefaultFlushDelay = 1400 * time.Millisecond

// AlbumKey identifies one media group of one chat.
type AlbumKey struct {
	ChatID  int64
	GroupID string
}

// MediaItem is one entry of an outgoing media group.
type MediaItem struct {
	Kind      Kind
	FileID    string
	Caption   string
	MessageID int
}

// Part is a single album message handed to the Aggregator.
type Part struct {
	Key AlbumKey
	// Item is nil for kinds a media group cannot carry.
	Item      *MediaItem
	Caption   string
	MessageID int
	SentAt    time.Time
	UserID    int64
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type pendingAlbum struct {
	ctx        context.Context
	items      []MediaItem
	caption    string
	captionMsg int
	firstMsg   int
	firstAt    time.Time
	userID     int64
	timer      Timer
}

// AggregatorOptions configures NewAggregator.
type AggregatorOptions struct {
	AdminChatID int64
	Delay       time.Duration
	Location    *time.Location
	Scheduler   Scheduler
}

// Aggregator buffers album parts per AlbumKey and posts each album to the
// admin chat once the flush delay after its first part has elapsed.
type Aggregator struct {
	out   Outbound
	admin int64
	delay time.Duration
	loc   *time.Location
	sched Scheduler

	mu      sync.Mutex
	pending map[AlbumKey]*pendingAlbum
	closed  bool
}

// NewAggregator constructs an Aggregator writing to out.
func NewAggregator(out Outbound, opts AggregatorOptions) *Aggregator {
	if opts.Delay <= 0 {
		opts.Delay = DefaultFlushDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = clockScheduler{}
	}
	return &Aggregator{
		out:     out,
		admin:   opts.AdminChatID,
		delay:   opts.Delay,
		loc:     opts.Location,
		sched:   opts.Scheduler,
		pending: make(map[AlbumKey]*pendingAlbum),
	}
}

// OnPart records p. The first part of a key schedules the flush; later parts
// only append, so the window is measured from the first arrival.
func (a *Aggregator) OnPart(ctx context.Context, p Part) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	pa, ok := a.pending[p.Key]
	if !ok {
		pa = &pendingAlbum{
			ctx:      context.WithoutCancel(ctx),
			firstMsg: p.MessageID,
			firstAt:  p.SentAt,
			userID:   p.UserID,
		}
		a.pending[p.Key] = pa
		key := p.Key
		pa.timer = a.sched.AfterFunc(a.delay, func() { a.flush(key) })
		logger.Debug(ctx, logger.CompAlbum, "album.open",
			slog.String("group_id", key.GroupID),
			slog.Duration("delay", a.delay),
		)
	} else if p.MessageID < pa.firstMsg {
		pa.firstMsg = p.MessageID
		pa.firstAt = p.SentAt
	}

	if p.Caption != "" && (pa.caption == "" || p.MessageID < pa.captionMsg) {
		pa.caption = p.Caption
		pa.captionMsg = p.MessageID
	}
	if p.Item != nil && p.Item.Kind.InAlbum() {
		item := *p.Item
		item.MessageID = p.MessageID
		pa.items = append(pa.items, item)
	}
}

// flush pops the buffer of key and sends it. Runs on the scheduler goroutine.
func (a *Aggregator) flush(key AlbumKey) {
	a.mu.Lock()
	pa, ok := a.pending[key]
	if ok {
		delete(a.pending, key)
	}
	a.mu.Unlock()

	if !ok {
		return
	}
	ctx := pa.ctx
	if len(pa.items) == 0 {
		metrics.AlbumsEmpty.Inc()
		logger.Debug(ctx, logger.CompAlbum, "album.empty", slog.String("group_id", key.GroupID))
		return
	}

	items := slices.Clone(pa.items)
	slices.SortStableFunc(items, func(x, y MediaItem) int { return cmp.Compare(x.MessageID, y.MessageID) })

	caption := pa.caption
	if caption == "" {
		caption = TextPlaceholderAlbum
	}
	for i := range items {
		items[i].Caption = ""
	}
	items[0].Caption = caption

	keyAttrs := []slog.Attr{
		slog.String("group_id", key.GroupID),
		slog.Int64("chat_id", key.ChatID),
	}
	if err := a.out.SendMediaGroup(ctx, a.admin, items); err != nil {
		logSendFailure(ctx, logger.CompAlbum, opSendMediaGroup, err, keyAttrs...)
		return
	}
	text := notification(TextHeaderAlbum, pa.firstAt, a.loc, caption)
	if err := a.out.SendText(ctx, a.admin, text, &Keyboard{UserID: pa.userID}); err != nil {
		logSendFailure(ctx, logger.CompAlbum, opSendText, err, keyAttrs...)
		return
	}

	metrics.AlbumsFlushed.Inc()
	metrics.AlbumItems.Add(float64(len(items)))
	logger.Info(ctx, logger.CompAlbum, "album.flushed",
		append(keyAttrs, slog.Int("items", len(items)), slog.String("status", "ok"))...,
	)
}

// Pending returns the number of open album buffers.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Close cancels every scheduled flush and discards the buffered parts.
func (a *Aggregator) Close() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	dropped := len(a.pending)
	for key, pa := range a.pending {
		if pa.timer != nil {
			pa.timer.Stop()
		}
		delete(a.pending, key)
	}
	return dropped
}
