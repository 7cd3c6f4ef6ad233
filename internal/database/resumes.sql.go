package database

import (
	"context"

	"github.com/google/uuid"
)

const getResume = `-- name: GetResume :one
SELECT id, original_filename, mime, size_bytes, storage_provider, object_key, storage_url, upload_status, created_at, user_id FROM resumes WHERE id=$1
`

func (q *Queries) GetResume(ctx context.Context, id uuid.UUID) (Resume, error) {
	row := q.db.QueryRowContext(ctx, getResume, id)
	var i Resume
	err := row.Scan(
		&i.ID,
		&i.OriginalFilename,
		&i.Mime,
		&i.SizeBytes,
		&i.StorageProvider,
		&i.ObjectKey,
		&i.StorageUrl,
		&i.UploadStatus,
		&i.CreatedAt,
		&i.UserID,
	)
	return i, err
}
