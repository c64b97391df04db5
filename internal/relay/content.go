package relay

// Kind tags the payload carried by a message.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindPhoto
	KindVideo
	KindDocument
	KindAudio
	KindVoice
	KindAnimation
	KindSticker
	KindVideoNote
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	case KindDocument:
		return "document"
	case KindAudio:
		return "audio"
	case KindVoice:
		return "voice"
	case KindAnimation:
		return "animation"
	case KindSticker:
		return "sticker"
	case KindVideoNote:
		return "video_note"
	default:
		return "unknown"
	}
}

// InAlbum reports whether a media group may carry this kind.
func (k Kind) InAlbum() bool {
	switch k {
	case KindPhoto, KindVideo, KindDocument, KindAudio, KindAnimation:
		return true
	default:
		return false
	}
}

// Media references a file already stored on the platform.
type Media struct {
	Kind   Kind
	FileID string
}

// Content is the deliverable payload of one message.
type Content struct {
	Kind    Kind
	Text    string
	FileID  string
	Caption string
}

// ContentOf classifies m. Plain text wins only when there is no caption;
// otherwise the media slot decides. The platform adapter fills Media with
// the first present kind in the order photo, video, document, audio, voice,
// animation, sticker, video note.
func ContentOf(m Message) Content {
	if m.Text != "" && m.Caption == "" {
		return Content{Kind: KindText, Text: m.Text}
	}
	if m.Media.Kind == KindUnknown || m.Media.Kind == KindText || m.Media.FileID == "" {
		return Content{Kind: KindUnknown, Caption: m.Caption}
	}
	return Content{Kind: m.Media.Kind, FileID: m.Media.FileID, Caption: m.Caption}
}
