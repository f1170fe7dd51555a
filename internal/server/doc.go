// Package server implements the HTTP and WebSocket transport of the room
// chat relay.
//
// Each WebSocket connection gets a Client with its own read and write pumps.
// Inbound frames are handed to the chat router; the Hub owns the set of live
// connections and delivers the router's outbound frames to them. Configuration,
// origin checks, rate limiting and routing live in their own files.
package server
