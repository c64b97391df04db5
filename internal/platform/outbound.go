package platform

import (
	"context"
	"fmt"
	"strconv"

	"github.com/m3rciful/anonrelay/core/telegram/keyboard"
	"github.com/m3rciful/anonrelay/internal/relay"

	tele "gopkg.in/telebot.v4"
)

// Callback uniques carried by the reply keyboard.
const (
	UniqueReply  = relay.ActionReply
	UniqueCancel = relay.ActionCancel
)

// BotAPI is the part of *tele.Bot the outbound adapter calls.
type BotAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	SendAlbum(to tele.Recipient, a tele.Album, opts ...interface{}) ([]tele.Message, error)
	Copy(to tele.Recipient, msg tele.Editable, opts ...interface{}) (*tele.Message, error)
}

// Outbound implements relay.Outbound on top of telebot.
type Outbound struct {
	bot BotAPI
}

var _ relay.Outbound = (*Outbound)(nil)

// NewOutbound wraps bot.
func NewOutbound(bot BotAPI) *Outbound {
	return &Outbound{bot: bot}
}

// ReplyMarkup renders the admin controls for userID.
func ReplyMarkup(userID int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons(
		keyboard.InlineBtn{Text: relay.TextButtonReply, Unique: UniqueReply, Data: strconv.FormatInt(userID, 10)},
		keyboard.InlineBtn{Text: relay.TextButtonCancel, Unique: UniqueCancel},
	)
}

func sendOptions(kb *relay.Keyboard) []interface{} {
	if kb == nil {
		return nil
	}
	return []interface{}{ReplyMarkup(kb.UserID)}
}

func (o *Outbound) SendText(_ context.Context, chatID int64, text string, kb *relay.Keyboard) error {
	_, err := o.bot.Send(tele.ChatID(chatID), text, sendOptions(kb)...)
	return err
}

func (o *Outbound) SendMediaGroup(_ context.Context, chatID int64, items []relay.MediaItem) error {
	album := make(tele.Album, 0, len(items))
	for _, it := range items {
		in, err := albumInput(it)
		if err != nil {
			return err
		}
		album = append(album, in)
	}
	_, err := o.bot.SendAlbum(tele.ChatID(chatID), album)
	return err
}

func (o *Outbound) SendMedia(_ context.Context, chatID int64, c relay.Content, caption string, kb *relay.Keyboard) error {
	what, err := sendable(c, caption)
	if err != nil {
		return err
	}
	_, err = o.bot.Send(tele.ChatID(chatID), what, sendOptions(kb)...)
	return err
}

func (o *Outbound) CopyMessage(_ context.Context, toChatID, fromChatID int64, messageID int) error {
	_, err := o.bot.Copy(tele.ChatID(toChatID), tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    fromChatID,
	})
	return err
}

func albumInput(it relay.MediaItem) (tele.Inputtable, error) {
	file := tele.File{FileID: it.FileID}
	switch it.Kind {
	case relay.KindPhoto:
		return &tele.Photo{File: file, Caption: it.Caption}, nil
	case relay.KindVideo:
		return &tele.Video{File: file, Caption: it.Caption}, nil
	case relay.KindDocument:
		return &tele.Document{File: file, Caption: it.Caption}, nil
	case relay.KindAudio:
		return &tele.Audio{File: file, Caption: it.Caption}, nil
	case relay.KindAnimation:
		return &tele.Animation{File: file, Caption: it.Caption}, nil
	default:
		return nil, fmt.Errorf("%w: %s in media group", relay.ErrUnsupportedContent, it.Kind)
	}
}

func sendable(c relay.Content, caption string) (interface{}, error) {
	file := tele.File{FileID: c.FileID}
	switch c.Kind {
	case relay.KindText:
		return c.Text, nil
	case relay.KindPhoto:
		return &tele.Photo{File: file, Caption: caption}, nil
	case relay.KindVideo:
		return &tele.Video{File: file, Caption: caption}, nil
	case relay.KindDocument:
		return &tele.Document{File: file, Caption: caption}, nil
	case relay.KindAudio:
		return &tele.Audio{File: file, Caption: caption}, nil
	case relay.KindVoice:
		return &tele.Voice{File: file, Caption: caption}, nil
	case relay.KindAnimation:
		return &tele.Animation{File: file, Caption: caption}, nil
	case relay.KindSticker:
		return &tele.Sticker{File: file}, nil
	case relay.KindVideoNote:
		return &tele.VideoNote{File: file}, nil
	default:
		return nil, fmt.Errorf("%w: %s", relay.ErrUnsupportedContent, c.Kind)
	}
}
