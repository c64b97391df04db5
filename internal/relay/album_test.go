package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T) (*Aggregator, *fakeScheduler, *recorder) {
	t.Helper()
	sched := &fakeScheduler{}
	out := newRecorder()
	agg := NewAggregator(out, AggregatorOptions{
		AdminChatID: testAdminChat,
		Location:    testLoc,
		Scheduler:   sched,
	})
	return agg, sched, out
}

func photoPart(key AlbumKey, msgID int, fileID, caption string) Part {
	return Part{
		Key:       key,
		Item:      &MediaItem{Kind: KindPhoto, FileID: fileID},
		Caption:   caption,
		MessageID: msgID,
		SentAt:    testSentAt,
		UserID:    key.ChatID,
	}
}

func TestAggregatorOneFlushPerAlbum(t *testing.T) {
	agg, sched, out := newTestAggregator(t)
	ctx := context.Background()
	key := AlbumKey{ChatID: 7, GroupID: "g"}

	// Handlers may run out of order; flush restores message order.
	agg.OnPart(ctx, photoPart(key, 12, "c", ""))
	agg.OnPart(ctx, photoPart(key, 10, "a", ""))
	agg.OnPart(ctx, photoPart(key, 11, "b", ""))

	require.Equal(t, 1, sched.scheduled())
	assert.Equal(t, DefaultFlushDelay, sched.timers[0].delay)
	assert.Empty(t, out.all())

	sched.fireAll()

	calls := out.all()
	require.Len(t, calls, 2)
	assert.Equal(t, opSendMediaGroup, calls[0].Op)
	assert.Equal(t, testAdminChat, calls[0].Chat)
	require.Len(t, calls[0].Items, 3)
	assert.Equal(t, "a", calls[0].Items[0].FileID)
	assert.Equal(t, "b", calls[0].Items[1].FileID)
	assert.Equal(t, "c", calls[0].Items[2].FileID)
	assert.Equal(t, TextPlaceholderAlbum, calls[0].Items[0].Caption)
	assert.Empty(t, calls[0].Items[1].Caption)
	assert.Empty(t, calls[0].Items[2].Caption)

	assert.Equal(t, opSendText, calls[1].Op)
	assert.Equal(t, TextHeaderAlbum+"\n🕓 "+testStamp+"\n\n"+TextPlaceholderAlbum, calls[1].Text)
	require.NotNil(t, calls[1].Keyboard)
	assert.Equal(t, int64(7), calls[1].Keyboard.UserID)
	assert.Zero(t, agg.Pending())
}

func TestAggregatorKeysIndependent(t *testing.T) {
	agg, sched, out := newTestAggregator(t)
	ctx := context.Background()
	k1 := AlbumKey{ChatID: 1, GroupID: "x"}
	k2 := AlbumKey{ChatID: 2, GroupID: "x"}

	agg.OnPart(ctx, photoPart(k1, 1, "1a", ""))
	agg.OnPart(ctx, photoPart(k2, 1, "2a", "two"))
	agg.OnPart(ctx, photoPart(k1, 2, "1b", ""))
	agg.OnPart(ctx, photoPart(k2, 2, "2b", ""))

	require.Equal(t, 2, sched.scheduled())
	sched.fireAll()

	var groups [][]MediaItem
	var notes []call
	for _, c := range out.all() {
		switch c.Op {
		case opSendMediaGroup:
			groups = append(groups, c.Items)
		case opSendText:
			notes = append(notes, c)
		}
	}
	require.Len(t, groups, 2)
	require.Len(t, notes, 2)

	byFirst := map[string][]MediaItem{}
	for _, g := range groups {
		require.Len(t, g, 2)
		byFirst[g[0].FileID] = g
	}
	assert.Equal(t, "1b", byFirst["1a"][1].FileID)
	assert.Equal(t, "2b", byFirst["2a"][1].FileID)
	assert.Equal(t, "two", byFirst["2a"][0].Caption)

	users := []int64{notes[0].Keyboard.UserID, notes[1].Keyboard.UserID}
	assert.ElementsMatch(t, []int64{1, 2}, users)
}

func TestAggregatorEmptyFlushSendsNothing(t *testing.T) {
	agg, sched, out := newTestAggregator(t)
	key := AlbumKey{ChatID: 3, GroupID: "s"}

	agg.OnPart(context.Background(), Part{Key: key, MessageID: 1, Caption: "sticker", UserID: 3})
	require.Equal(t, 1, sched.scheduled())

	sched.fireAll()
	assert.Empty(t, out.all())
	assert.Zero(t, agg.Pending())
}

func TestAggregatorUnsupportedKindSkipped(t *testing.T) {
	agg, sched, out := newTestAggregator(t)
	key := AlbumKey{ChatID: 3, GroupID: "v"}

	agg.OnPart(context.Background(), Part{Key: key, MessageID: 1, Item: &MediaItem{Kind: KindVoice, FileID: "v"}})
	agg.OnPart(context.Background(), photoPart(key, 2, "p", ""))
	sched.fireAll()

	calls := out.all()
	require.Len(t, calls, 2)
	require.Len(t, calls[0].Items, 1)
	assert.Equal(t, KindPhoto, calls[0].Items[0].Kind)
}

func TestAggregatorCaptionScenario(t *testing.T) {
	agg, sched, out := newTestAggregator(t)
	ctx := context.Background()
	key := AlbumKey{ChatID: 55, GroupID: "g1"}

	agg.OnPart(ctx, photoPart(key, 100, "photo-1", ""))
	agg.OnPart(ctx, Part{
		Key:       key,
		Item:      &MediaItem{Kind: KindDocument, FileID: "doc-1"},
		Caption:   "hi",
		MessageID: 101,
		SentAt:    testSentAt.Add(200 * time.Millisecond),
		UserID:    55,
	})
	sched.fireAll()

	calls := out.all()
	require.Len(t, calls, 2)
	require.Equal(t, []MediaItem{
		{Kind: KindPhoto, FileID: "photo-1", Caption: "hi", MessageID: 100},
		{Kind: KindDocument, FileID: "doc-1", MessageID: 101},
	}, calls[0].Items)
	assert.Equal(t, testAdminChat, calls[1].Chat)
	assert.Equal(t, "📩 Новое анонимное сообщение (альбом)\n🕓 "+testStamp+"\n\nhi", calls[1].Text)
	assert.Equal(t, &Keyboard{UserID: 55}, calls[1].Keyboard)
}

func TestAggregatorLatePartStartsNewCycle(t *testing.T) {
	agg, sched, out := newTestAggregator(t)
	key := AlbumKey{ChatID: 9, GroupID: "late"}

	agg.OnPart(context.Background(), photoPart(key, 1, "a", ""))
	sched.fireAll()
	agg.OnPart(context.Background(), photoPart(key, 2, "b", ""))

	assert.Equal(t, 2, sched.scheduled())
	assert.Equal(t, 1, agg.Pending())
	sched.fireAll()
	assert.Len(t, out.all(), 4)
}

func TestAggregatorMediaGroupFailureSkipsNotification(t *testing.T) {
	agg, sched, out := newTestAggregator(t)
	out.fail[opSendMediaGroup] = errors.New("telegram: Bad Request: wrong file identifier (400)")
	key := AlbumKey{ChatID: 4, GroupID: "f"}

	agg.OnPart(context.Background(), photoPart(key, 1, "a", ""))
	sched.fireAll()

	calls := out.all()
	require.Len(t, calls, 1)
	assert.Equal(t, opSendMediaGroup, calls[0].Op)
	assert.Zero(t, agg.Pending())
}

func TestAggregatorCloseStopsTimers(t *testing.T) {
	agg, sched, out := newTestAggregator(t)
	key := AlbumKey{ChatID: 5, GroupID: "c"}

	agg.OnPart(context.Background(), photoPart(key, 1, "a", ""))
	assert.Equal(t, 1, agg.Close())
	assert.True(t, sched.timers[0].stopped)

	sched.fireAll()
	agg.OnPart(context.Background(), photoPart(key, 2, "b", ""))
	assert.Empty(t, out.all())
	assert.Equal(t, 1, sched.scheduled())
}
