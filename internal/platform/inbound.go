package platform

import (
	"github.com/m3rciful/anonrelay/core/telegram/callbacks"
	"github.com/m3rciful/anonrelay/internal/relay"

	tele "gopkg.in/telebot.v4"
)

// MessageFrom maps a telebot message onto relay.Message.
func MessageFrom(m *tele.Message) relay.Message {
	if m == nil {
		return relay.Message{}
	}
	msg := relay.Message{
		MessageID: m.ID,
		SentAt:    m.Time(),
		Text:      m.Text,
		Caption:   m.Caption,
		Media:     mediaOf(m),
		GroupID:   m.AlbumID,
	}
	if m.Chat != nil {
		msg.ChatID = m.Chat.ID
	}
	if m.Sender != nil {
		msg.SenderID = m.Sender.ID
	}
	return msg
}

// mediaOf picks the first attachment present, photo first. telebot already
// exposes the largest photo size.
func mediaOf(m *tele.Message) relay.Media {
	switch {
	case m.Photo != nil:
		return relay.Media{Kind: relay.KindPhoto, FileID: m.Photo.FileID}
	case m.Video != nil:
		return relay.Media{Kind: relay.KindVideo, FileID: m.Video.FileID}
	case m.Document != nil:
		return relay.Media{Kind: relay.KindDocument, FileID: m.Document.FileID}
	case m.Audio != nil:
		return relay.Media{Kind: relay.KindAudio, FileID: m.Audio.FileID}
	case m.Voice != nil:
		return relay.Media{Kind: relay.KindVoice, FileID: m.Voice.FileID}
	case m.Animation != nil:
		return relay.Media{Kind: relay.KindAnimation, FileID: m.Animation.FileID}
	case m.Sticker != nil:
		return relay.Media{Kind: relay.KindSticker, FileID: m.Sticker.FileID}
	case m.VideoNote != nil:
		return relay.Media{Kind: relay.KindVideoNote, FileID: m.VideoNote.FileID}
	default:
		return relay.Media{}
	}
}

// CallbackFrom maps a button press onto relay.Callback.
func CallbackFrom(cb *tele.Callback) relay.Callback {
	if cb == nil {
		return relay.Callback{}
	}
	action, payload := callbacks.ParseCallbackData(cb)
	out := relay.Callback{Action: action, Payload: payload}
	if cb.Sender != nil {
		out.UserID = cb.Sender.ID
	}
	if cb.Message != nil && cb.Message.Chat != nil {
		out.ChatID = cb.Message.Chat.ID
	}
	return out
}
