package chat

import "time"

// Message is an immutable chat record. Exactly one of Text or File is set.
// Sender is captured at send time and never re-resolved.
type Message struct {
	Sender    string
	Text      string
	File      []byte
	FileName  string
	MimeType  string
	CreatedAt time.Time
	Room      string
}

// IsFile reports whether the message carries a file payload.
func (m Message) IsFile() bool {
	return m.File != nil
}

// Record is a point-in-time view of a stored message: its position in the
// room log and a copy of its reaction counters.
type Record struct {
	Index     int
	Message   Message
	Reactions map[string]int
}
