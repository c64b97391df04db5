package relay

import (
	"context"
	"sync"
	"time"
)

type fakeTimer struct {
	f       func()
	delay   time.Duration
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeScheduler records timers and fires them on demand.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{f: f, delay: d}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *fakeScheduler) fireAll() {
	s.mu.Lock()
	due := make([]*fakeTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

type call struct {
	Op        string
	Chat      int64
	From      int64
	MessageID int
	Text      string
	Items     []MediaItem
	Content   Content
	Keyboard  *Keyboard
}

// recorder is an Outbound that stores every call and can fail selected ops.
type recorder struct {
	mu    sync.Mutex
	calls []call
	fail  map[string]error
}

func newRecorder() *recorder {
	return &recorder{fail: make(map[string]error)}
}

func (r *recorder) record(c call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.fail[c.Op]
}

func (r *recorder) SendText(_ context.Context, chatID int64, text string, kb *Keyboard) error {
	return r.record(call{Op: opSendText, Chat: chatID, Text: text, Keyboard: kb})
}

func (r *recorder) SendMediaGroup(_ context.Context, chatID int64, items []MediaItem) error {
	return r.record(call{Op: opSendMediaGroup, Chat: chatID, Items: items})
}

func (r *recorder) SendMedia(_ context.Context, chatID int64, c Content, caption string, kb *Keyboard) error {
	return r.record(call{Op: opSendMedia, Chat: chatID, Content: c, Text: caption, Keyboard: kb})
}

func (r *recorder) CopyMessage(_ context.Context, toChatID, fromChatID int64, messageID int) error {
	return r.record(call{Op: opCopyMessage, Chat: toChatID, From: fromChatID, MessageID: messageID})
}

func (r *recorder) all() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

const (
	testAdminChat int64 = -1001
	testStamp           = "17.10.2026 12:00"
)

var (
	testLoc    = time.FixedZone("UTC+3", 3*3600)
	testSentAt = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
)
