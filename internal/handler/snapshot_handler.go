package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coderoom/internal/app/storage"
	"coderoom/internal/app/tree"
	"coderoom/internal/pkg/errs"
	"coderoom/internal/pkg/logx"
	"coderoom/internal/pkg/req"
	"coderoom/internal/pkg/resp"
)

// SnapshotResponse describes an exported snapshot.
type SnapshotResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RestoreInput is the JSON body of a snapshot restore.
type RestoreInput struct {
	Key string `json:"key"`
}

// HandleCreateSnapshot uploads the room's current tree and returns a download link.
func HandleCreateSnapshot(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Snapshots == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFeatureDisabled, "Snapshot storage"))
			return
		}

		roomID := chi.URLParam(r, "roomId")

		root, ok, err := deps.Hub.Snapshot(roomID)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}
		if err != nil {
			resp.RespondError(w, r, treeError(err, ""))
			return
		}

		data, err := json.Marshal(root)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		key := storage.SnapshotKey(roomID, uuid.NewString())
		if err := deps.Snapshots.Put(r.Context(), key, data); err != nil {
			logx.Error(err, "Failed to upload snapshot", "room_id", roomID, "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		url, err := deps.Snapshots.PresignDownload(r.Context(), key, storage.PresignDuration)
		if err != nil {
			logx.Error(err, "Failed to presign snapshot download", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		logx.Info("Snapshot exported", "room_id", roomID, "key", key, "bytes", len(data))

		resp.RespondSuccess(w, r, SnapshotResponse{
			Key:       key,
			URL:       url,
			ExpiresAt: time.Now().Add(storage.PresignDuration).UTC(),
		})
	}
}

// HandleRestoreSnapshot replaces the room's tree with a previously exported snapshot.
func HandleRestoreSnapshot(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Snapshots == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFeatureDisabled, "Snapshot storage"))
			return
		}

		roomID := chi.URLParam(r, "roomId")

		var input RestoreInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if !storage.OwnsKey(roomID, input.Key) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, ok := deps.Hub.RoomInfo(roomID); !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		data, err := deps.Snapshots.Get(r.Context(), input.Key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrSnapshotNotFound))
				return
			}
			logx.Error(err, "Failed to download snapshot", "key", input.Key)
			resp.RespondError(w, r, errs.NewError(errs.ErrStorageFailed))
			return
		}

		root, err := tree.Decode(data)
		if err != nil {
			logx.Warn("Stored snapshot is not a valid tree", "key", input.Key, "error", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrTreeCorrupted))
			return
		}

		if !deps.Hub.RestoreTree(roomID, root) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		logx.Info("Snapshot restored", "room_id", roomID, "key", input.Key)
		resp.RespondOK(w, r)
	}
}
