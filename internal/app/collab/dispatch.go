/*
Package collab contains the real-time core of the editor: the Hub that owns all room
state and the Client sessions attached to it.

This file routes inbound protocol events to their handlers.
*/
package collab

import (
	"encoding/json"

	"coderoom/internal/pkg/pathx"
)

// Dispatch applies one inbound event from c. Malformed or out-of-context events are
// logged and dropped; nothing is ever sent back as an error.
func (h *Hub) Dispatch(c *Client, env Envelope) {
	switch env.Event {
	case EventJoin:
		var p JoinPayload
		if decodePayload(c, env, &p) {
			h.join(c, p)
		}

	case EventCodeChange:
		var p CodeChangePayload
		if decodePayload(c, env, &p) {
			h.codeChange(c, p)
		}

	case EventFileChange:
		var p FileChangePayload
		if decodePayload(c, env, &p) {
			h.fileChange(c, p)
		}

	case EventTyping:
		var p TypingPayload
		if decodePayload(c, env, &p) {
			h.typing(c, p)
		}

	case EventLanguageChange:
		var p LanguageChangePayload
		if decodePayload(c, env, &p) {
			h.languageChange(c, p)
		}

	case EventCompileCode:
		var p CompilePayload
		if decodePayload(c, env, &p) {
			h.compile(c, p)
		}

	default:
		c.logger.Warn().Str("event", string(env.Event)).Msg("Client sent unsupported event")
	}
}

func decodePayload(c *Client, env Envelope, dst any) bool {
	if len(env.Data) == 0 {
		c.logger.Warn().Str("event", string(env.Event)).Msg("Client sent event without data")
		return false
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		c.logger.Warn().Err(err).Str("event", string(env.Event)).Msg("Client sent invalid payload")
		return false
	}
	return true
}

func (h *Hub) join(c *Client, p JoinPayload) {
	if !pathx.IsValidRoomID(p.RoomID) || p.UserName == "" {
		c.logger.Warn().Str("room_id", p.RoomID).Msg("Join rejected: invalid room id or empty user name")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if c.state == stateClosed || h.closed {
		return
	}

	prevRoom, prevUser := c.roomID, c.userName
	wasJoined := c.state == stateJoined

	code, _ := h.rooms.Join(p.RoomID, p.UserName)
	h.attachLocked(c, p.RoomID)
	c.state = stateJoined
	c.roomID = p.RoomID
	c.userName = p.UserName

	// The new membership is recorded before the old one is released so that
	// re-joining the same room never empties (and discards) it.
	if wasJoined && (prevRoom != p.RoomID || prevUser != p.UserName) {
		h.departLocked(c, prevRoom, prevUser, prevRoom != p.RoomID)
	}

	users := h.rooms.Users(p.RoomID)
	h.sendLocked(c, EventCodeUpdate, code)
	h.broadcastLocked(p.RoomID, EventUserJoined, users, nil)

	c.logger.Info().
		Str("room_id", p.RoomID).
		Int("total_users", len(users)).
		Msg("Client joined room.")
}

func (h *Hub) codeChange(c *Client, p CodeChangePayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, ok := c.targetRoom(p.RoomID)
	if !ok {
		c.logger.Warn().Str("room_id", p.RoomID).Msg("Dropping codeChange outside the joined room")
		return
	}

	if !h.rooms.SetCode(roomID, p.Code) {
		return
	}
	h.broadcastLocked(roomID, EventCodeUpdate, p.Code, c)
}

func (h *Hub) fileChange(c *Client, p FileChangePayload) {
	if !pathx.IsValidPath(p.Path) {
		c.logger.Warn().Str("path", p.Path).Msg("Dropping file:change with invalid path")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, ok := c.targetRoom(p.RoomID)
	if !ok {
		c.logger.Warn().Str("room_id", p.RoomID).Msg("Dropping file:change outside the joined room")
		return
	}

	if err := h.trees.WriteFile(roomID, p.Path, p.Content); err != nil {
		c.logger.Warn().Err(err).Str("path", p.Path).Msg("File write failed")
		return
	}
	h.broadcastLocked(roomID, EventFileRefresh, nil, nil)
}

func (h *Hub) typing(c *Client, p TypingPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, ok := c.targetRoom(p.RoomID)
	if !ok {
		return
	}

	name := p.UserName
	if name == "" {
		name = c.userName
	}
	h.broadcastLocked(roomID, EventUserTyping, name, c)
}

func (h *Hub) languageChange(c *Client, p LanguageChangePayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, ok := c.targetRoom(p.RoomID)
	if !ok {
		return
	}
	h.broadcastLocked(roomID, EventLanguageUpdate, p.Language, nil)
}
