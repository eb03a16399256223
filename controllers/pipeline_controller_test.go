package controller

import (
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerdesk/realtime"
)

func newStageApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, cleanup := newMockDB(t)

	pc := NewPipelineController(db, discardLogger(), realtime.NewHub(discardLogger()))
	app := fiber.New()
	app.Delete("/stages/:id", pc.DeleteStage)
	return app, mock, cleanup
}

func TestDeleteStageRefusedWhileLeadsRemain(t *testing.T) {
	app, mock, cleanup := newStageApp(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "pipeline_stages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "order_position"}).
			AddRow(5, "Engaged", "#8B5CF6", 2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "leads"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/stages/5", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	// The delete statement was never expected; reaching it would fail here.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStageEmpty(t *testing.T) {
	app, mock, cleanup := newStageApp(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "pipeline_stages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "order_position"}).
			AddRow(5, "Engaged", "#8B5CF6", 2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "leads"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "pipeline_stages" SET "deleted_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/stages/5", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteStageNotFound(t *testing.T) {
	app, mock, cleanup := newStageApp(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT \* FROM "pipeline_stages"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "color", "order_position"}))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/stages/99", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
