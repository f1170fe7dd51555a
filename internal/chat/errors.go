package chat

import "fmt"

// Every error below is dropped by Dispatch after being logged; none of them
// is reported back to the client.
var (
	ErrNotLoggedIn      = fmt.Errorf("connection has not logged in")
	ErrUnknownRoom      = fmt.Errorf("unknown room")
	ErrRoomMismatch     = fmt.Errorf("room does not match the current room")
	ErrMalformedEvent   = fmt.Errorf("malformed event")
	ErrUnknownEvent     = fmt.Errorf("unknown event")
	ErrUnknownReaction  = fmt.Errorf("unknown reaction")
	ErrMessageNotFound  = fmt.Errorf("message not found")
	ErrEmptyMessage     = fmt.Errorf("empty message")
	ErrInvalidFile      = fmt.Errorf("invalid file payload")
	ErrFileTooLarge     = fmt.Errorf("file payload too large")
	ErrDuplicateRoom    = fmt.Errorf("duplicate room name")
	ErrNoRooms          = fmt.Errorf("at least one room is required")
	ErrEmptyDisplayName = fmt.Errorf("display name is required")
)
