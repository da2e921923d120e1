/*
Package collab contains the real-time core of the editor: the Hub that owns all room
state and the Client sessions attached to it.

This file defines the wire protocol. Every websocket frame, in either direction, is a
JSON envelope {"event": "<name>", "data": <payload>}.
*/
package collab

import (
	"encoding/json"
)

// EventType names a protocol event.
type EventType string

// Client → server events.
const (
	EventJoin           EventType = "join"
	EventCodeChange     EventType = "codeChange"
	EventFileChange     EventType = "file:change"
	EventTyping         EventType = "typing"
	EventLanguageChange EventType = "languageChange"
	EventCompileCode    EventType = "compileCode"
)

// Server → client events.
const (
	EventCodeUpdate     EventType = "codeUpdate"
	EventUserJoined     EventType = "userJoined"
	EventFileRefresh    EventType = "file:refresh"
	EventUserTyping     EventType = "userTyping"
	EventLanguageUpdate EventType = "languageUpdate"
	EventCodeResponse   EventType = "codeResponse"
)

// Envelope is one protocol frame.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinPayload is the data of a join event.
type JoinPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

// CodeChangePayload is the data of a codeChange event.
type CodeChangePayload struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

// FileChangePayload is the data of a file:change event.
type FileChangePayload struct {
	RoomID  string `json:"roomId"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// TypingPayload is the data of a typing event.
type TypingPayload struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

// LanguageChangePayload is the data of a languageChange event.
type LanguageChangePayload struct {
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

// CompilePayload is the data of a compileCode event.
type CompilePayload struct {
	Code     string `json:"code"`
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
	Version  string `json:"version"`
	Input    string `json:"input"`
}

// encodeEvent marshals an outbound frame. A nil data produces a frame without payload.
func encodeEvent(event EventType, data any) ([]byte, error) {
	env := Envelope{Event: event}
	if data != nil {
		raw, ok := data.(json.RawMessage)
		if !ok {
			var err error
			raw, err = json.Marshal(data)
			if err != nil {
				return nil, err
			}
		}
		env.Data = raw
	}
	return json.Marshal(env)
}
