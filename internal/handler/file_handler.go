/*
Package handler provides the HTTP handlers and routing setup for the collaboration server.

This file contains the file tree endpoints. Every successful mutation is followed by a
file:refresh broadcast to the room, emitted by the Hub.
*/
package handler

import (
	"errors"
	"net/http"

	"coderoom/internal/app/tree"
	"coderoom/internal/pkg/errs"
	"coderoom/internal/pkg/logx"
	"coderoom/internal/pkg/pathx"
	"coderoom/internal/pkg/req"
	"coderoom/internal/pkg/resp"
)

// PathInput is the JSON body of the mutating tree endpoints.
type PathInput struct {
	RoomID string `json:"roomId"`
	Path   string `json:"path"`
}

// ContentResponse is the body of a file content read.
type ContentResponse struct {
	Content string `json:"content"`
}

func validateTarget(roomID, path string) *errs.CustomError {
	if roomID == "" {
		return errs.NewError(errs.ErrInvalidParams)
	}
	if !pathx.IsValidPath(path) {
		return errs.NewError(errs.ErrInvalidPath)
	}
	return nil
}

// HandleGetTree returns the sanitized tree of a room, creating an empty one if needed.
func HandleGetTree(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := r.URL.Query().Get("roomId")
		if roomID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		root, err := deps.Hub.Tree(roomID)
		if err != nil {
			resp.RespondError(w, r, treeError(err, ""))
			return
		}

		resp.RespondSuccess(w, r, root)
	}
}

// HandleGetFileContent returns the content of one file.
func HandleGetFileContent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		roomID, path := query.Get("roomId"), query.Get("path")

		if customErr := validateTarget(roomID, path); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		content, err := deps.Hub.ReadFile(roomID, path)
		if err != nil {
			if errors.Is(err, tree.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileNotFound))
				return
			}
			resp.RespondError(w, r, treeError(err, path))
			return
		}

		resp.RespondSuccess(w, r, ContentResponse{Content: content})
	}
}

// HandleCreateFolder creates a directory chain.
func HandleCreateFolder(deps *AppDeps) http.HandlerFunc {
	return handleTreeMutation(deps, "create folder", deps.Hub.CreateDirectory)
}

// HandleCreateFile creates an empty file, failing when the name is taken.
func HandleCreateFile(deps *AppDeps) http.HandlerFunc {
	return handleTreeMutation(deps, "create file", deps.Hub.CreateFile)
}

// HandleDeletePath removes a file or folder.
func HandleDeletePath(deps *AppDeps) http.HandlerFunc {
	return handleTreeMutation(deps, "delete", deps.Hub.DeletePath)
}

func handleTreeMutation(deps *AppDeps, op string, apply func(roomID, path string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input PathInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := validateTarget(input.RoomID, input.Path); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := apply(input.RoomID, input.Path); err != nil {
			logx.Debug("Tree mutation rejected", "op", op, "room_id", input.RoomID, "path", input.Path, "error", err.Error())
			resp.RespondError(w, r, treeError(err, input.Path))
			return
		}

		resp.RespondOK(w, r)
	}
}
