package chat

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Inbound event names.
const (
	EventLogin        = "login"
	EventJoinRoom     = "joinRoom"
	EventLoadMore     = "loadMore"
	EventUploadFile   = "uploadFile"
	EventReactMessage = "reactMessage"
)

// Outbound event names.
const (
	EventInitialMessages = "initialMessages"
	EventOlderMessages   = "olderMessages"
	EventFileMessage     = "fileMessage"
	EventNotification    = "notification"
	EventOnlineUsers     = "onlineUsers"
	EventMessageReaction = "messageReaction"
)

// Used in both directions.
const (
	EventChatMessage = "chatMessage"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
)

// Envelope is the JSON object carried by every WebSocket text frame.
type Envelope struct {
	Event string          `json:"event" validate:"required"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WireMessage is the JSON form of a stored message. Files are rendered as
// data URLs so browsers can link to them directly.
type WireMessage struct {
	Index     int            `json:"index"`
	Sender    string         `json:"sender"`
	Text      string         `json:"text,omitempty"`
	File      string         `json:"file,omitempty"`
	FileName  string         `json:"fileName,omitempty"`
	MimeType  string         `json:"mimeType,omitempty"`
	Size      int            `json:"size,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Room      string         `json:"room"`
	Reactions map[string]int `json:"reactions,omitempty"`
}

// ReactionEvent is the payload of messageReaction.
type ReactionEvent struct {
	MessageID int    `json:"messageId"`
	User      string `json:"user"`
	Reaction  string `json:"reaction"`
	Count     int    `json:"count"`
}

type loadMoreRequest struct {
	Room string `json:"room"`
	Page *int   `json:"page" validate:"required,min=0"`
}

type chatMessageRequest struct {
	Text string `json:"text" validate:"required"`
	Room string `json:"room"`
}

type uploadFileRequest struct {
	File     string `json:"file" validate:"required"`
	FileName string `json:"fileName" validate:"required"`
	Room     string `json:"room"`
}

type reactMessageRequest struct {
	MessageID *int   `json:"messageId" validate:"required,min=0"`
	Reaction  string `json:"reaction" validate:"required"`
	Room      string `json:"room"`
}

var validate = validator.New()

// DecodeEnvelope parses a raw frame.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, errors.Wrap(ErrMalformedEvent, err.Error())
	}
	if err := validate.Struct(env); err != nil {
		return env, errors.Wrap(ErrMalformedEvent, err.Error())
	}
	return env, nil
}

// EncodeFrame builds the envelope for an outbound event.
func EncodeFrame(event string, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", event)
	}
	return json.Marshal(Envelope{Event: event, Data: payload})
}

func decodePayload[T any](env Envelope) (T, error) {
	var v T
	if len(env.Data) == 0 {
		return v, errors.Wrapf(ErrMalformedEvent, "%s: missing payload", env.Event)
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, errors.Wrapf(ErrMalformedEvent, "%s: %v", env.Event, err)
	}
	if err := validate.Struct(v); err != nil {
		return v, errors.Wrapf(ErrMalformedEvent, "%s: %v", env.Event, err)
	}
	return v, nil
}

// decodeString reads a bare JSON string payload. A missing payload yields
// "" and it is up to the caller to decide whether that is acceptable.
func decodeString(env Envelope) (string, error) {
	var s string
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return "", nil
	}
	if err := json.Unmarshal(env.Data, &s); err != nil {
		return "", errors.Wrapf(ErrMalformedEvent, "%s: %v", env.Event, err)
	}
	return s, nil
}

func toWire(rec Record) WireMessage {
	m := rec.Message
	w := WireMessage{
		Index:     rec.Index,
		Sender:    m.Sender,
		Text:      m.Text,
		Timestamp: m.CreatedAt,
		Room:      m.Room,
		Reactions: rec.Reactions,
	}
	if m.IsFile() {
		w.File = "data:" + m.MimeType + ";base64," + base64.StdEncoding.EncodeToString(m.File)
		w.FileName = m.FileName
		w.MimeType = m.MimeType
		w.Size = len(m.File)
	}
	return w
}

func toWireList(records []Record) []WireMessage {
	return lo.Map(records, func(rec Record, _ int) WireMessage {
		return toWire(rec)
	})
}
