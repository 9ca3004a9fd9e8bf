package postgres

import (
	"context"
	"database/sql"

	"github.com/zeebo/errs"

	"shotapi/internal/model"
	"shotapi/internal/repository"
)

// Error is the class of activity table failures.
var Error = errs.Class("activity db")

const activityColumns = `id, action, actor, object_key, detail, created_at`

// ActivityPostgres stores the audit trail in the screenshot_activity table.
// Queries are parameterized; there is no business logic here.
type ActivityPostgres struct {
	db *sql.DB
}

func NewActivityPostgres(db *sql.DB) *ActivityPostgres {
	return &ActivityPostgres{db: db}
}

var _ repository.ActivityRepository = (*ActivityPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (model.Activity, error) {
	var a model.Activity
	err := row.Scan(&a.ID, &a.Action, &a.Actor, &a.ObjectKey, &a.Detail, &a.CreatedAt)
	return a, err
}

// Create appends one entry and returns it as stored.
func (r *ActivityPostgres) Create(ctx context.Context, a *model.Activity) (*model.Activity, error) {
	const q = `INSERT INTO screenshot_activity (` + activityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + activityColumns

	out, err := scanActivity(r.db.QueryRowContext(ctx, q,
		a.ID, a.Action, a.Actor, a.ObjectKey, a.Detail, a.CreatedAt))
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &out, nil
}

// List returns one page, newest first, with the total row count.
func (r *ActivityPostgres) List(ctx context.Context, pq repository.PageQuery) (_ *repository.PageResult[model.Activity], err error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM screenshot_activity`).Scan(&total); err != nil {
		return nil, Error.Wrap(err)
	}

	const q = `SELECT ` + activityColumns + `
		FROM screenshot_activity
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(rows.Close())) }()

	items := make([]model.Activity, 0, pq.Limit)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, Error.Wrap(err)
	}

	return &repository.PageResult[model.Activity]{Items: items, Total: total}, nil
}
