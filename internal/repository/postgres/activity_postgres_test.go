package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"shotapi/internal/model"
	"shotapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var activityCols = []string{"id", "action", "actor", "object_key", "detail", "created_at"}

func TestActivityPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActivityPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	a := &model.Activity{
		ID:        "act-1",
		Action:    model.ActionMetadataUpdate,
		Actor:     "admin",
		ObjectKey: "shot.png",
		Detail:    `{"tags":["ui"]}`,
		CreatedAt: now,
	}

	rows := sqlmock.NewRows(activityCols).
		AddRow(a.ID, a.Action, a.Actor, a.ObjectKey, a.Detail, a.CreatedAt)

	mock.ExpectQuery("INSERT INTO screenshot_activity").
		WithArgs(a.ID, a.Action, a.Actor, a.ObjectKey, a.Detail, a.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, a)

	require.NoError(t, err)
	assert.Equal(t, a, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityPostgres_CreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO screenshot_activity").WillReturnError(errors.New("connection reset"))

	result, err := NewActivityPostgres(db).Create(context.Background(), &model.Activity{ID: "x"})
	assert.True(t, Error.Has(err))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActivityPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM screenshot_activity").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows(activityCols).
			AddRow("act-2", model.ActionDelete, "admin", "b.png", "", time.Now()).
			AddRow("act-1", model.ActionLogin, "admin", "", "", time.Now())

		mock.ExpectQuery("SELECT (.+) FROM screenshot_activity\\s+ORDER BY created_at DESC").
			WithArgs(10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, model.ActionDelete, res.Items[0].Action)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count fails", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM screenshot_activity").
			WillReturnError(errors.New("boom"))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10})
		assert.True(t, Error.Has(err))
		assert.Nil(t, res)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bad row", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM screenshot_activity").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM screenshot_activity").
			WithArgs(5, 20).
			WillReturnRows(sqlmock.NewRows(activityCols).
				AddRow("act-9", model.ActionLogin, "admin", "", "", "not a time"))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 5, Offset: 20})
		assert.True(t, Error.Has(err))
		assert.Nil(t, res)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
