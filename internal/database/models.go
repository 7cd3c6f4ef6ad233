package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Resume struct {
	ID               uuid.UUID
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	StorageProvider  string
	ObjectKey        string
	StorageUrl       string
	UploadStatus     string
	CreatedAt        time.Time
	UserID           uuid.UUID
}

type Task struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	ResumeID       uuid.UUID
	Kind           string
	UseAi          bool
	JobTitle       string
	Company        string
	JobDescription string
	Status         string
	CreatedAt      time.Time
}

type TaskResult struct {
	ID        uuid.UUID
	TaskID    uuid.UUID
	Result    json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}
