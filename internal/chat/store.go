package chat

import "maps"

// History is the message store of a single room. Messages are addressed by
// an id handed out by Append; the Log implementation uses the raw log
// position, and the router only ever goes through this interface.
//
// Implementations are not safe for concurrent use; the owning Room
// serializes access.
type History interface {
	// Append stores msg at the end of the log and returns its id.
	Append(msg Message) int
	// Recent returns the last count messages in chronological order.
	Recent(count int) []Record
	// Page returns the page-th window of size messages counted backward from
	// the newest message. Page 0 is the same window as Recent(size).
	Page(page, size int) []Record
	// React increments the counter for symbol on message id and returns the
	// new count. It reports false when id does not exist.
	React(id int, symbol string) (int, bool)
	// Len reports the number of stored messages.
	Len() int
}

type entry struct {
	msg       Message
	reactions map[string]int
}

// Log is an append-only, unbounded History indexed from 0.
//
// Offsets for Page are computed from the length at call time, so messages
// appended between two page requests shift the windows returned.
type Log struct {
	entries []entry
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

func (l *Log) Append(msg Message) int {
	l.entries = append(l.entries, entry{msg: msg})
	return len(l.entries) - 1
}

func (l *Log) Recent(count int) []Record {
	if count <= 0 {
		return []Record{}
	}
	start := max(0, len(l.entries)-count)
	return l.window(start, len(l.entries))
}

func (l *Log) Page(page, size int) []Record {
	if page < 0 || size <= 0 {
		return []Record{}
	}
	length := len(l.entries)
	if page > length/size {
		return []Record{}
	}
	start := max(0, length-size*(page+1))
	end := length - size*page
	if start >= end {
		return []Record{}
	}
	return l.window(start, end)
}

func (l *Log) React(id int, symbol string) (int, bool) {
	if id < 0 || id >= len(l.entries) {
		return 0, false
	}
	e := &l.entries[id]
	if e.reactions == nil {
		e.reactions = make(map[string]int)
	}
	e.reactions[symbol]++
	return e.reactions[symbol], true
}

func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) window(start, end int) []Record {
	out := make([]Record, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, Record{
			Index:     i,
			Message:   l.entries[i].msg,
			Reactions: maps.Clone(l.entries[i].reactions),
		})
	}
	return out
}
