package handler

import (
	"coderoom/internal/app/collab"
	"coderoom/internal/app/storage"
	"coderoom/internal/configs"
)

// AppDeps carries everything the HTTP handlers need. Snapshots and Executions are nil
// when the corresponding integration is not configured.
type AppDeps struct {
	Hub        *collab.Hub
	Config     *configs.AppConfig
	Snapshots  storage.SnapshotStore
	Executions collab.ExecutionLog
}
