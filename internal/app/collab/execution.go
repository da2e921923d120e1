package collab

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"coderoom/internal/app/db"
	"coderoom/internal/app/executor"
)

// logWriteTimeout bounds one execution log insert.
const logWriteTimeout = 5 * time.Second

var errExecutionThrottled = errors.New("too many executions in this room, try again shortly")

func (h *Hub) compile(c *Client, p CompilePayload) {
	h.mu.Lock()

	roomID, ok := c.targetRoom(p.RoomID)
	if !ok || h.closed || !h.rooms.Exists(roomID) {
		c.logger.Warn().Str("room_id", p.RoomID).Msg("Dropping compileCode for unknown room")
		h.mu.Unlock()
		return
	}

	if h.execLimiter != nil && !h.execLimiter.Allow(roomID) {
		h.sendLocked(c, EventCodeResponse, executor.ErrorResponse(errExecutionThrottled))
		c.logger.Warn().Msg("Execution throttled")
		h.mu.Unlock()
		return
	}

	h.inflight.Add(1)
	h.mu.Unlock()

	go h.runExecution(roomID, executor.Request{
		Code:     p.Code,
		Language: p.Language,
		Version:  p.Version,
		Stdin:    p.Input,
	})
}

// runExecution calls the executor without holding the Hub lock and broadcasts the
// outcome to whoever is in the room when it completes.
func (h *Hub) runExecution(roomID string, req executor.Request) {
	defer h.inflight.Done()

	start := time.Now()
	res, err := h.execute(req)
	elapsed := time.Since(start)

	var (
		payload json.RawMessage
		output  string
	)
	if err != nil {
		payload = executor.ErrorResponse(err)
		output = "Error: " + err.Error()
		h.logger.Warn().Err(err).Str("room_id", roomID).Str("language", req.Language).Msg("Execution failed")
	} else {
		payload = res.Raw
		output = res.Output
	}

	h.mu.Lock()
	if err == nil {
		h.rooms.RecordOutput(roomID, output)
	}
	h.broadcastLocked(roomID, EventCodeResponse, payload, nil)
	h.mu.Unlock()

	if h.log == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), logWriteTimeout)
	defer cancel()

	if logErr := h.log.Record(ctx, db.Execution{
		RoomID:     roomID,
		Language:   req.Language,
		Version:    req.Version,
		Output:     output,
		Failed:     err != nil,
		DurationMS: elapsed.Milliseconds(),
	}); logErr != nil {
		h.logger.Error().Err(logErr).Str("room_id", roomID).Msg("Failed to record execution")
	}
}

// execute shields the Hub from a misbehaving Executor.
func (h *Hub) execute(req executor.Request) (res *executor.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().Interface("panic", r).Msg("Recovered from panic in executor")
			res, err = nil, errors.New("internal execution error")
		}
	}()

	res, err = h.executor.Execute(h.ctx, req)
	if err == nil && res == nil {
		err = errors.New("empty execution result")
	}
	return res, err
}
