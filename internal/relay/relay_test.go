package relay

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/anonrelay/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser int64 = 42

func newTestRelay(t *testing.T, mode string) (*Relay, *fakeScheduler, *recorder) {
	t.Helper()
	sched := &fakeScheduler{}
	out := newRecorder()
	r := New(out, Options{
		AdminChatID: testAdminChat,
		AlbumMode:   mode,
		Location:    testLoc,
		Scheduler:   sched,
	})
	t.Cleanup(r.Close)
	return r, sched, out
}

func TestRelaySingleMessage(t *testing.T) {
	r, _, out := newTestRelay(t, coreconfig.AlbumModeBuffer)

	r.HandleMessage(context.Background(), Message{
		ChatID: testUser, SenderID: testUser, MessageID: 5, SentAt: testSentAt, Text: "hello",
	})

	calls := out.all()
	require.Len(t, calls, 3)
	assert.Equal(t, call{Op: opSendText, Chat: testUser, Text: TextAck}, calls[0])
	assert.Equal(t, call{Op: opCopyMessage, Chat: testAdminChat, From: testUser, MessageID: 5}, calls[1])
	assert.Equal(t, call{
		Op:       opSendText,
		Chat:     testAdminChat,
		Text:     "📩 Новое анонимное сообщение\n🕓 " + testStamp + "\n\nhello",
		Keyboard: &Keyboard{UserID: testUser},
	}, calls[2])
}

func TestRelaySingleMessagePlaceholder(t *testing.T) {
	r, _, out := newTestRelay(t, coreconfig.AlbumModeBuffer)

	r.HandleMessage(context.Background(), Message{
		ChatID: testUser, SenderID: testUser, MessageID: 6, SentAt: testSentAt,
		Media: Media{Kind: KindVoice, FileID: "v"},
	})

	calls := out.all()
	require.Len(t, calls, 3)
	assert.Contains(t, calls[2].Text, "\n\n"+TextPlaceholderFile)
}

func TestRelayCopyFailureStillNotifies(t *testing.T) {
	r, _, out := newTestRelay(t, coreconfig.AlbumModeBuffer)
	out.fail[opCopyMessage] = errors.New("telegram: Bad Request: message to copy not found (400)")

	r.HandleMessage(context.Background(), Message{
		ChatID: testUser, SenderID: testUser, MessageID: 7, SentAt: testSentAt, Caption: "pic",
		Media: Media{Kind: KindPhoto, FileID: "p"},
	})

	calls := out.all()
	require.Len(t, calls, 3)
	assert.Equal(t, opSendText, calls[2].Op)
	assert.Contains(t, calls[2].Text, "\n\npic")
}

func TestRelayAlbumAcksEachPart(t *testing.T) {
	r, sched, out := newTestRelay(t, coreconfig.AlbumModeBuffer)
	ctx := context.Background()

	r.HandleMessage(ctx, Message{ChatID: 55, SenderID: 55, MessageID: 1, SentAt: testSentAt, GroupID: "g1",
		Media: Media{Kind: KindPhoto, FileID: "p"}})
	r.HandleMessage(ctx, Message{ChatID: 55, SenderID: 55, MessageID: 2, SentAt: testSentAt, GroupID: "g1",
		Caption: "hi", Media: Media{Kind: KindDocument, FileID: "d"}})

	require.Len(t, out.all(), 2)
	for _, c := range out.all() {
		assert.Equal(t, call{Op: opSendText, Chat: 55, Text: TextAck}, c)
	}

	out.reset()
	sched.fireAll()
	calls := out.all()
	require.Len(t, calls, 2)
	assert.Equal(t, opSendMediaGroup, calls[0].Op)
	assert.Len(t, calls[0].Items, 2)
	assert.Equal(t, "hi", calls[0].Items[0].Caption)
	assert.Equal(t, TextHeaderAlbum+"\n🕓 "+testStamp+"\n\nhi", calls[1].Text)
	assert.Equal(t, &Keyboard{UserID: 55}, calls[1].Keyboard)
}

func TestRelayAlbumNotifyOnce(t *testing.T) {
	r, sched, out := newTestRelay(t, coreconfig.AlbumModeNotifyOnce)
	ctx := context.Background()

	r.HandleMessage(ctx, Message{ChatID: 55, SenderID: 55, MessageID: 1, SentAt: testSentAt, GroupID: "g1",
		Media: Media{Kind: KindPhoto, FileID: "p"}})
	r.HandleMessage(ctx, Message{ChatID: 55, SenderID: 55, MessageID: 2, SentAt: testSentAt, GroupID: "g1",
		Media: Media{Kind: KindPhoto, FileID: "q"}})

	assert.Zero(t, sched.scheduled())
	ops := make([]string, 0)
	for _, c := range out.all() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{
		opSendText, opCopyMessage, opSendText,
		opSendText, opCopyMessage,
	}, ops)
	assert.Equal(t, TextHeaderAlbum+"\n🕓 "+testStamp+"\n\n"+TextPlaceholderAlbum, out.all()[2].Text)
}

func TestRelayReplyFlow(t *testing.T) {
	r, _, out := newTestRelay(t, coreconfig.AlbumModeBuffer)
	ctx := context.Background()

	answer := r.HandleCallback(ctx, Callback{ChatID: testAdminChat, UserID: testAdmin, Action: ActionReply, Payload: "42"})
	assert.Equal(t, CallbackAnswer{Text: TextReplyMode}, answer)
	require.Equal(t, []call{{Op: opSendText, Chat: testAdminChat, Text: TextReplyHint}}, out.all())

	out.reset()
	r.HandleMessage(ctx, Message{ChatID: testAdminChat, SenderID: testAdmin, MessageID: 50, Text: "ok"})
	assert.Equal(t, []call{
		{Op: opSendText, Chat: 42, Text: "Ответ от админа:\n\nok"},
		{Op: opSendText, Chat: testAdminChat, Text: TextDelivered},
	}, out.all())

	_, awaiting := r.Replies().Target(testAdmin)
	assert.False(t, awaiting)
}

func TestRelayReplyFailureReportsToAdmin(t *testing.T) {
	r, _, out := newTestRelay(t, coreconfig.AlbumModeBuffer)
	ctx := context.Background()
	out.fail[opSendMedia] = errors.New("telegram: Forbidden: bot was blocked by the user (403)")

	r.HandleCallback(ctx, Callback{ChatID: testAdminChat, UserID: testAdmin, Action: ActionReply, Payload: "42"})
	out.reset()
	r.HandleMessage(ctx, Message{ChatID: testAdminChat, SenderID: testAdmin, MessageID: 51,
		Media: Media{Kind: KindSticker, FileID: "s"}})

	calls := out.all()
	require.Len(t, calls, 2)
	assert.Equal(t, call{Op: opSendText, Chat: testAdminChat, Text: TextFailed}, calls[1])
	_, awaiting := r.Replies().Target(testAdmin)
	assert.True(t, awaiting)
}

func TestRelayIdleAdminIgnored(t *testing.T) {
	r, _, out := newTestRelay(t, coreconfig.AlbumModeBuffer)

	r.HandleMessage(context.Background(), Message{ChatID: testAdminChat, SenderID: testAdmin, MessageID: 52,
		Media: Media{Kind: KindVoice, FileID: "v"}})
	assert.Empty(t, out.all())
}

func TestRelayCallbacks(t *testing.T) {
	tests := []struct {
		name   string
		cb     Callback
		answer CallbackAnswer
		sends  int
	}{
		{
			name:   "foreign chat",
			cb:     Callback{ChatID: 777, UserID: testAdmin, Action: ActionReply, Payload: "42"},
			answer: CallbackAnswer{Text: TextForeignChat, Alert: true},
		},
		{
			name: "malformed user id",
			cb:   Callback{ChatID: testAdminChat, UserID: testAdmin, Action: ActionReply, Payload: "abc"},
		},
		{
			name:   "cancel",
			cb:     Callback{ChatID: testAdminChat, UserID: testAdmin, Action: ActionCancel},
			answer: CallbackAnswer{Text: TextCancelled},
		},
		{
			name: "unknown action",
			cb:   Callback{ChatID: testAdminChat, UserID: testAdmin, Action: "noop"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, out := newTestRelay(t, coreconfig.AlbumModeBuffer)

			assert.Equal(t, tt.answer, r.HandleCallback(context.Background(), tt.cb))
			assert.Len(t, out.all(), tt.sends)
			_, awaiting := r.Replies().Target(testAdmin)
			assert.False(t, awaiting)
		})
	}
}

func TestRelayCancelClearsTarget(t *testing.T) {
	r, _, out := newTestRelay(t, coreconfig.AlbumModeBuffer)
	ctx := context.Background()

	r.HandleCallback(ctx, Callback{ChatID: testAdminChat, UserID: testAdmin, Action: ActionReply, Payload: "42"})
	r.HandleCallback(ctx, Callback{ChatID: testAdminChat, UserID: testAdmin, Action: ActionCancel})
	out.reset()

	r.HandleMessage(ctx, Message{ChatID: testAdminChat, SenderID: testAdmin, MessageID: 53, Text: "ok"})
	assert.Empty(t, out.all())
}

func TestOptionsFrom(t *testing.T) {
	offset := 0
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{AdminChatID: testAdminChat},
		Relay:    coreconfig.RelayConfig{AlbumMode: coreconfig.AlbumModeNotifyOnce, UTCOffsetHours: &offset},
	}

	opts := OptionsFrom(cfg)
	assert.Equal(t, testAdminChat, opts.AdminChatID)
	assert.Equal(t, coreconfig.AlbumModeNotifyOnce, opts.AlbumMode)
	assert.Equal(t, DefaultFlushDelay, opts.FlushDelay)
	assert.Equal(t, DefaultSeenGroupTTL, opts.SeenGroupTTL)
	_, off := testSentAt.In(opts.Location).Zone()
	assert.Zero(t, off)
}
