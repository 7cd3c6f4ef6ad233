package database

import (
	"context"

	"github.com/google/uuid"
)

const updateTaskStatus = `-- name: UpdateTaskStatus :exec
UPDATE tasks
SET status=$1
WHERE id=$2
`

type UpdateTaskStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdateTaskStatus(ctx context.Context, arg UpdateTaskStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateTaskStatus, arg.Status, arg.ID)
	return err
}
