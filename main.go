package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/muhammadolammi/resumeagentworker/internal/database"
	"github.com/muhammadolammi/resumeagentworker/internal/extractor"
	"github.com/streadway/amqp"
)

const (
	defaultGeminiModel = "gemini-2.5-pro"
	defaultWorkerCount = 3
)

// loadConfig reads the worker settings through getenv so tests can supply
// their own environment.
func loadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		DBUrl:        getenv("DB_URL"),
		RABBITMQUrl:  getenv("RABBITMQ_URL"),
		GoogleApiKey: getenv("GOOGLE_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL"),
		TempDir:      getenv("TEMP_DIR"),
		WorkerCount:  defaultWorkerCount,
		R2: R2Config{
			AccountID: getenv("R2_ACCOUNT_ID"),
			Bucket:    getenv("R2_BUCKET"),
			AccessKey: getenv("R2_ACCESS_KEY"),
			SecretKey: getenv("R2_SECRET_KEY"),
		},
	}

	required := []struct{ name, value string }{
		{"DB_URL", cfg.DBUrl},
		{"RABBITMQ_URL", cfg.RABBITMQUrl},
		{"R2_ACCOUNT_ID", cfg.R2.AccountID},
		{"R2_BUCKET", cfg.R2.Bucket},
		{"R2_ACCESS_KEY", cfg.R2.AccessKey},
		{"R2_SECRET_KEY", cfg.R2.SecretKey},
	}
	for _, r := range required {
		if r.value == "" {
			return Config{}, fmt.Errorf("empty %s in environment", r.name)
		}
	}

	if cfg.GeminiModel == "" {
		cfg.GeminiModel = defaultGeminiModel
	}
	if v := getenv("WORKER_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("invalid WORKER_COUNT %q", v)
		}
		cfg.WorkerCount = n
	}
	return cfg, nil
}

func main() {
	_ = godotenv.Load()
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatal("error opening db. err: ", err)
	}
	dbqueries := database.New(db)

	ctx := context.Background()
	storage, err := newR2Store(ctx, cfg.R2)
	if err != nil {
		log.Fatal(err)
	}

	conn, err := amqp.Dial(cfg.RABBITMQUrl)
	if err != nil {
		log.Fatalf("error connecting to RabbitMQ. err:  %v", err)
	}
	defer conn.Close()

	var extractorOpts []extractor.Option
	if cfg.TempDir != "" {
		extractorOpts = append(extractorOpts, extractor.WithTempDir(cfg.TempDir))
	}

	workerConfig := WorkerConfig{
		DB:          dbqueries,
		Storage:     storage,
		Publisher:   &amqpPublisher{conn: conn},
		RABBITMQUrl: cfg.RABBITMQUrl,
		Extractor:   extractor.New(extractorOpts...),
		RetryDelay:  500 * time.Millisecond,
	}

	if cfg.GoogleApiKey == "" {
		log.Println("empty GOOGLE_API_KEY in env, AI suggestions and cover letters disabled")
	} else {
		reviewer, err := newAgentGenerator(ctx, cfg.GoogleApiKey, cfg.GeminiModel, reviewerAgentName, "Review resumes", reviewerPrompt())
		if err != nil {
			log.Fatalf("failed to create reviewer agent: %v", err)
		}
		coverWriter, err := newAgentGenerator(ctx, cfg.GoogleApiKey, cfg.GeminiModel, coverWriterAgentName, "Write cover letters", coverWriterPrompt())
		if err != nil {
			log.Fatalf("failed to create cover letter agent: %v", err)
		}
		workerConfig.Reviewer = reviewer
		workerConfig.CoverWriter = coverWriter
	}

	log.Printf("Starting %d workers consumer pool", cfg.WorkerCount)
	workerConfig.StartConsumerWorkerPool(cfg.WorkerCount)
}
