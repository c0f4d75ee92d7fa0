package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"mediakit/internal/httpkit"
	"mediakit/internal/models"
	"mediakit/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	client_ref  TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	params_json JSONB NOT NULL,
	result_json JSONB,
	error_text  TEXT,
	webhook_url TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at  TIMESTAMPTZ,
	finished_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS jobs_created_at_idx ON jobs (created_at DESC);
`

const jobColumns = `id, kind, client_ref, status, params_json, result_json, COALESCE(error_text, ''), webhook_url, created_at, started_at, finished_at`

type JobRepository struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) *JobRepository {
	return &JobRepository{db: db}
}

// Migrate creates the jobs table if it does not exist.
func (r *JobRepository) Migrate(ctx context.Context) error {
	_, err := r.db.Exec(ctx, schema)
	return err
}

func (r *JobRepository) Create(ctx context.Context, j *models.Job) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO jobs (id, kind, client_ref, status, params_json, webhook_url)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, j.ID, string(j.Kind), j.ClientRef, string(j.Status), []byte(j.Params), j.WebhookURL).Scan(&j.CreatedAt)

	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			return errors.Newf(errors.CodeConflict, "job %s already exists", j.ID)
		}
		return errors.Wrap(err, "jobs.create", "failed to insert job")
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id=$1`, id)
	j, err := scanJob(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.NotFound("job", id)
	}
	if err != nil {
		return nil, classify(err, "jobs.get", "failed to load job")
	}
	return j, nil
}

// List returns the most recent jobs first, optionally filtered by status.
func (r *JobRepository) List(ctx context.Context, status models.JobStatus, limit int) ([]models.Job, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, classify(err, "jobs.list", "failed to list jobs")
	}
	defer rows.Close()

	out := make([]models.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	return r.exec(ctx, id,
		`UPDATE jobs SET status='RUNNING', started_at=NOW(), finished_at=NULL, error_text=NULL WHERE id=$1`)
}

func (r *JobRepository) MarkDone(ctx context.Context, id string, result any) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.exec(ctx, id,
		`UPDATE jobs SET status='DONE', finished_at=NOW(), result_json=$2 WHERE id=$1`, b)
}

func (r *JobRepository) MarkFailed(ctx context.Context, id string, errText string) error {
	return r.exec(ctx, id,
		`UPDATE jobs SET status='FAILED', finished_at=NOW(), result_json=NULL, error_text=$2 WHERE id=$1`, errText)
}

func (r *JobRepository) exec(ctx context.Context, id, sql string, args ...any) error {
	cmd, err := r.db.Exec(ctx, sql, append([]any{id}, args...)...)
	if err != nil {
		return errors.Wrap(err, "jobs.update", "failed to update job")
	}
	if cmd.RowsAffected() == 0 {
		return errors.NotFound("job", id)
	}
	return nil
}

// classify maps a missing jobs table to UNAVAILABLE.
func classify(err error, op, message string) error {
	if httpkit.IsUndefinedTable(err) {
		return errors.WrapWithCode(err, errors.CodeUnavailable, op, "jobs table does not exist; run the migration")
	}
	return errors.Wrap(err, op, message)
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	var kind, status string
	var params, result []byte
	if err := row.Scan(
		&j.ID,
		&kind,
		&j.ClientRef,
		&status,
		&params,
		&result,
		&j.ErrorText,
		&j.WebhookURL,
		&j.CreatedAt,
		&j.StartedAt,
		&j.FinishedAt,
	); err != nil {
		return nil, err
	}
	j.Kind = models.JobKind(kind)
	j.Status = models.JobStatus(status)
	j.Params = params
	if len(result) > 0 {
		j.Result = result
	}
	return &j, nil
}
