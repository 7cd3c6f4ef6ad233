package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createOrUpdateTaskResult = `-- name: CreateOrUpdateTaskResult :exec
INSERT INTO task_results (
result, task_id)
VALUES ( $1, $2)
ON CONFLICT (task_id)
DO UPDATE SET
    result = EXCLUDED.result,
    updated_at = CURRENT_TIMESTAMP
`

type CreateOrUpdateTaskResultParams struct {
	Result json.RawMessage
	TaskID uuid.UUID
}

func (q *Queries) CreateOrUpdateTaskResult(ctx context.Context, arg CreateOrUpdateTaskResultParams) error {
	_, err := q.db.ExecContext(ctx, createOrUpdateTaskResult, arg.Result, arg.TaskID)
	return err
}
