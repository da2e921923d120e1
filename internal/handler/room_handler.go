/*
Package handler provides HTTP handler functions for room discovery and inspection.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"coderoom/internal/app/db"
	"coderoom/internal/pkg/errs"
	"coderoom/internal/pkg/logx"
	"coderoom/internal/pkg/randx"
	"coderoom/internal/pkg/req"
	"coderoom/internal/pkg/resp"
)

const (
	defaultExecutionsLimit = 20
	maxExecutionsLimit     = 100
)

// HandleNewRoom returns a fresh room id that satisfies the websocket join grammar.
// Nothing is created until the first join.
func HandleNewRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID, err := randx.RoomID()
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{
			"roomId": roomID,
		})
	}
}

// HandleRoomInfo returns the members, code buffer and last output of a live room.
func HandleRoomInfo(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomId")

		info, ok := deps.Hub.RoomInfo(roomID)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		resp.RespondSuccess(w, r, info)
	}
}

// HandleListExecutions returns the most recent executions of a room, newest first.
func HandleListExecutions(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Executions == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFeatureDisabled, "Execution history"))
			return
		}

		roomID := chi.URLParam(r, "roomId")

		limit, customErr := req.QueryInt(r, "limit", defaultExecutionsLimit, 1, maxExecutionsLimit)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		executions, err := deps.Executions.Recent(r.Context(), roomID, limit)
		if err != nil {
			logx.Error(err, "Failed to load executions", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if executions == nil {
			executions = []db.Execution{}
		}

		resp.RespondSuccess(w, r, executions)
	}
}
