package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/muhammadolammi/resumeagentworker/internal/analyzer"
	"github.com/muhammadolammi/resumeagentworker/internal/coverletter"
	"github.com/muhammadolammi/resumeagentworker/internal/database"
	"github.com/muhammadolammi/resumeagentworker/internal/extractor"
	"github.com/streadway/amqp"
)

const (
	tasksQueue         = "resume_tasks"
	taskUpdateExchange = "task_updates"

	snippetRunes  = 1000
	aiReviewRunes = 4000
)

// retry retries a function up to `attempts` times, waiting delay*(i+1) between tries
func retry[T any](attempts int, delay time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(delay * time.Duration(i+1))
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// parseReview keeps the raw agent output when it is not the JSON we asked for.
func parseReview(output string) *AIReview {
	review := &AIReview{}
	if err := json.Unmarshal([]byte(CleanJson(output)), review); err != nil {
		return &AIReview{Raw: output}
	}
	return review
}

func (workerConfig *WorkerConfig) improve(ctx context.Context, task Task, resumeText string) ImproveResult {
	result := ImproveResult{
		Status:               "ok",
		Analysis:             analyzer.Analyze(resumeText),
		ExtractedTextSnippet: analyzer.Snippet(resumeText, snippetRunes),
	}
	if !task.UseAI {
		return result
	}
	if workerConfig.Reviewer == nil {
		result.AI = &AIReview{Error: "AI reviewer not configured"}
		return result
	}

	msg := fmt.Sprintf("Resume text:\n%s", analyzer.Snippet(resumeText, aiReviewRunes))

	// AI failures are reported alongside the rule-based analysis, never as a task failure
	output, err := retry(2, workerConfig.RetryDelay, func() (string, error) {
		return workerConfig.Reviewer.Generate(ctx, task.UserID.String(), msg)
	})
	if err != nil {
		log.Printf("⚠️ Reviewer failed for task %s after retries: %v", task.ID, err)
		result.AI = &AIReview{Error: err.Error()}
		return result
	}
	result.AI = parseReview(output)
	return result
}

func (workerConfig *WorkerConfig) coverLetter(ctx context.Context, task Task, resumeText string) (CoverLetterResult, error) {
	req := coverletter.Request{
		JobTitle:       task.JobTitle,
		Company:        task.Company,
		JobDescription: task.JobDescription,
		ResumeText:     resumeText,
	}

	if !task.UseAI || workerConfig.CoverWriter == nil {
		return CoverLetterResult{Status: "ok", CoverLetter: coverletter.Template(req), Source: "template"}, nil
	}

	letter, err := retry(2, workerConfig.RetryDelay, func() (string, error) {
		return workerConfig.CoverWriter.Generate(ctx, task.UserID.String(), coverletter.Prompt(req))
	})
	if err != nil {
		return CoverLetterResult{}, fmt.Errorf("cover letter agent error: %w", err)
	}
	return CoverLetterResult{Status: "ok", CoverLetter: CleanJson(letter), Source: "ai"}, nil
}

// processTask downloads the task's resume, extracts its text, runs the
// requested kind of work and stores the result.
// Only the download, the AI calls and the final save are retried.
func (workerConfig *WorkerConfig) processTask(ctx context.Context, task Task) error {
	if task.Kind != TaskKindImprove && task.Kind != TaskKindCoverLetter {
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}

	resume, err := workerConfig.DB.GetResume(ctx, task.ResumeID)
	if err != nil {
		return fmt.Errorf("error getting resume: %v, err: %w", task.ResumeID, err)
	}

	format, err := extractor.FormatFromFilename(resume.OriginalFilename)
	if err != nil {
		return err
	}

	fileBytes, err := retry(3, workerConfig.RetryDelay, func() ([]byte, error) {
		return workerConfig.Storage.Download(ctx, resume.ObjectKey)
	})
	if err != nil {
		return fmt.Errorf("file download error: %w", err)
	}

	resumeText, err := workerConfig.Extractor.ExtractBytes(format, fileBytes)
	if err != nil {
		return fmt.Errorf("text extraction error: %w", err)
	}

	var result any
	switch task.Kind {
	case TaskKindImprove:
		result = workerConfig.improve(ctx, task, resumeText)
	case TaskKindCoverLetter:
		result, err = workerConfig.coverLetter(ctx, task, resumeText)
		if err != nil {
			return err
		}
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal task result: %w", err)
	}

	_, err = retry(3, workerConfig.RetryDelay, func() (any, error) {
		return nil, workerConfig.DB.CreateOrUpdateTaskResult(ctx, database.CreateOrUpdateTaskResultParams{
			Result: resultJSON,
			TaskID: task.ID,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to save task result after retries: %w", err)
	}
	return nil
}

func (workerConfig *WorkerConfig) setStatus(ctx context.Context, taskID uuid.UUID, status, message string) {
	err := workerConfig.DB.UpdateTaskStatus(ctx, database.UpdateTaskStatusParams{
		Status: status,
		ID:     taskID,
	})
	if err != nil {
		log.Printf("error updating task status in db to %s for task_id: %v. err: %v", status, taskID, err)
	}

	update := map[string]any{
		"task_id":   taskID,
		"status":    status,
		"message":   message,
		"timestamp": time.Now(),
	}
	if err := workerConfig.Publisher.PublishTaskUpdate(taskID, update); err != nil {
		log.Println("failed to publish update:", err)
	}
}

// handleMessage runs one queued task through to a completed or failed status.
func (workerConfig *WorkerConfig) handleMessage(ctx context.Context, workerID int, body []byte) {
	task := Task{}
	if err := json.Unmarshal(body, &task); err != nil {
		log.Printf("error unmarshalling message body. err: %v", err)
		if task.ID != uuid.Nil {
			workerConfig.setStatus(ctx, task.ID, StatusFailed, "task failed")
		}
		return
	}
	if task.ID == uuid.Nil {
		log.Printf("dropping task without id. body: %s", body)
		return
	}

	log.Printf("Worker %d processing task. task_id: %s kind: %s", workerID+1, task.ID, task.Kind)
	workerConfig.setStatus(ctx, task.ID, StatusProcessing, "task started")

	err := workerConfig.processTask(ctx, task)
	if err != nil {
		log.Printf("error running task_id: %v. err: %v", task.ID, err)
		message := "task failed"
		if errors.Is(err, extractor.ErrUnsupportedFormat) {
			message = "unsupported file type"
		}
		workerConfig.setStatus(ctx, task.ID, StatusFailed, message)
		return
	}

	log.Println("task id: " + task.ID.String() + " completed")
	workerConfig.setStatus(ctx, task.ID, StatusCompleted, "task completed")
}

func worker(id int, workerConfig *WorkerConfig, wg *sync.WaitGroup) {
	defer wg.Done()
	//    to consume message on the queue
	conn, err := amqp.Dial(workerConfig.RABBITMQUrl)
	if err != nil {
		log.Fatal("error dialling rabbitmq: " + err.Error())
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("error connecting to rabbitmq channel: " + err.Error())
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		taskUpdateExchange, // name
		"topic",            // kind
		true,               // durable
		false,              // auto-delete
		false,              // internal
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		log.Fatalf("Failed to declare exchange: %v", err)
	}

	_, err = ch.QueueDeclare(
		tasksQueue, // queue name
		true,       // durable (survives broker restarts)
		false,      // auto-delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		log.Fatalf("Failed to declare queue: %v", err)
	}

	msgs, err := ch.Consume(
		tasksQueue, // queue name
		"",         // consumer tag
		true,       // auto-ack
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		log.Fatal("error consuming rabbitmq message: " + err.Error())
	}

	for msg := range msgs {
		workerConfig.handleMessage(context.Background(), id, msg.Body)
	}
}

func (workerConfig *WorkerConfig) StartConsumerWorkerPool(numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := range numWorkers {
		log.Println("worker id ", i+1, "started")
		go worker(i, workerConfig, &wg)
	}
	wg.Wait() // block until all workers finish
}
