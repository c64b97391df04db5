package relay

import (
	"context"
	"time"
)

// Message is a platform-neutral inbound message.
type Message struct {
	ChatID    int64
	SenderID  int64
	MessageID int
	SentAt    time.Time
	Text      string
	Caption   string
	Media     Media
	// GroupID is set for parts of a media group (album).
	GroupID string
}

// Callback is a pressed inline button.
type Callback struct {
	ChatID  int64
	UserID  int64
	Action  string
	Payload string
}

// CallbackAnswer is shown to the admin who pressed a button.
type CallbackAnswer struct {
	Text  string
	Alert bool
}

// Keyboard asks the adapter to attach reply controls bound to UserID.
type Keyboard struct {
	UserID int64
}

// Outbound is the subset of the chat platform the relay writes to.
type Outbound interface {
	SendText(ctx context.Context, chatID int64, text string, kb *Keyboard) error
	SendMediaGroup(ctx context.Context, chatID int64, items []MediaItem) error
	SendMedia(ctx context.Context, chatID int64, c Content, caption string, kb *Keyboard) error
	CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error
}

// Callback actions.
const (
	ActionReply  = "reply"
	ActionCancel = "cancel"
)

// User and admin facing texts.
const (
	TextAck              = "Сообщение получено, спасибо! 🌄"
	TextHeaderSingle     = "📩 Новое анонимное сообщение"
	TextHeaderAlbum      = "📩 Новое анонимное сообщение (альбом)"
	TextPlaceholderFile  = "📎 Пользователь отправил файл"
	TextPlaceholderAlbum = "📎 Пользователь отправил альбом"
	TextReplyPrefix      = "Ответ от админа:\n\n"
	TextReplyMode        = "Режим ответа включён."
	TextReplyHint        = "Напиши ответ пользователю ниже одним сообщением. «Отмена» — чтобы выйти."
	TextForeignChat      = "Недоступно здесь."
	TextCancelled        = "Отмена."
	TextDelivered        = "✅ Отправлено пользователю."
	TextFailed           = "❌ Ошибка при отправке. Попробуй ещё раз."
	TextButtonReply      = "Ответить"
	TextButtonCancel     = "Отмена"
	TextStart            = "Привет! Здесь можно анонимно задать вопрос как всей нашей команде, так и отдельным специалистам 🤝\n\n" +
		"Просто отправьте сообщение, и мы сделаем всё возможное (в рамках наших СДВГ и плотных графиков работы и обучения), " +
		"чтобы ответить ✍️ Ответы мы будем стараться выкладывать в канал, но также можем ответить в самом боте."
)
