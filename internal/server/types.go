// Package server defines transport constants and utility helpers that are
// reused across client and hub logic.
package server

import (
	"strings"
	"time"

	"github.com/Tyrowin/roomchat/internal/chat"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Dispatcher is the part of the chat router a connection talks to.
type Dispatcher interface {
	Dispatch(h chat.Handle, raw []byte)
	Disconnect(h chat.Handle)
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
