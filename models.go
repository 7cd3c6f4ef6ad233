package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/resumeagentworker/internal/analyzer"
	"github.com/muhammadolammi/resumeagentworker/internal/database"
	"github.com/muhammadolammi/resumeagentworker/internal/extractor"
)

const (
	TaskKindImprove     = "improve"
	TaskKindCoverLetter = "cover_letter"

	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

type Config struct {
	DBUrl        string
	RABBITMQUrl  string
	R2           R2Config
	GoogleApiKey string
	GeminiModel  string
	WorkerCount  int
	TempDir      string
}

// TaskStore is the subset of *database.Queries the worker needs.
type TaskStore interface {
	GetResume(ctx context.Context, id uuid.UUID) (database.Resume, error)
	UpdateTaskStatus(ctx context.Context, arg database.UpdateTaskStatusParams) error
	CreateOrUpdateTaskResult(ctx context.Context, arg database.CreateOrUpdateTaskResultParams) error
}

type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// TextGenerator sends one user message to an AI agent and returns its final answer.
type TextGenerator interface {
	Generate(ctx context.Context, userID, message string) (string, error)
}

type UpdatePublisher interface {
	PublishTaskUpdate(taskID uuid.UUID, update map[string]any) error
}

type WorkerConfig struct {
	DB          TaskStore
	Storage     ObjectStore
	Publisher   UpdatePublisher
	RABBITMQUrl string
	Extractor   *extractor.Extractor
	// nil when GOOGLE_API_KEY is not set
	Reviewer    TextGenerator
	CoverWriter TextGenerator
	// retry backoff unit, 500ms in production
	RetryDelay time.Duration
}

// Task is the message the API enqueues on the tasks queue.
type Task struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	ResumeID       uuid.UUID `json:"resume_id"`
	Kind           string    `json:"kind"`
	UseAI          bool      `json:"use_ai"`
	JobTitle       string    `json:"job_title"`
	Company        string    `json:"company"`
	JobDescription string    `json:"job_description"`
}

type AIReview struct {
	Summary     string   `json:"summary,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	// agent output that was not valid JSON
	Raw   string `json:"raw,omitempty"`
	Error string `json:"error,omitempty"`
}

type ImproveResult struct {
	Status               string          `json:"status"`
	Analysis             analyzer.Report `json:"analysis"`
	AI                   *AIReview       `json:"ai,omitempty"`
	ExtractedTextSnippet string          `json:"extracted_text_snippet"`
}

type CoverLetterResult struct {
	Status      string `json:"status"`
	CoverLetter string `json:"cover_letter"`
	// "ai" or "template"
	Source string `json:"source"`
}
