package controller

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerdesk/config"
	"dealerdesk/realtime"
	"dealerdesk/utils"
)

type bulkSendResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Updated        int `json:"updated"`
		WebhooksSent   int `json:"webhooks_sent"`
		WebhooksFailed int `json:"webhooks_failed"`
		Skipped        int `json:"skipped"`
		Errors         int `json:"errors"`
	} `json:"data"`
}

func postBulkSend(t *testing.T, app *fiber.App, body string) bulkSendResponse {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/send-first-message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out bulkSendResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSendFirstMessageSkipsAlreadyTaggedLead(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	server, hits := countingWebhookServer()
	defer server.Close()
	automation := utils.NewAutomationClient(config.AutomationConfig{TagWebhookURL: server.URL})

	lc := NewLeadController(db, discardLogger(), automation, realtime.NewHub(discardLogger()))
	app := fiber.New()
	app.Post("/send-first-message", lc.SendFirstMessage)

	mock.ExpectQuery(`SELECT \* FROM "leads"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "phone", "tags", "status"}).
			AddRow(7, "Jordan", "Reyes", "+17785552345", "{Initial_Message}", "contacted"))

	out := postBulkSend(t, app, `{"lead_ids": [7]}`)

	assert.Equal(t, 1, out.Data.Skipped)
	assert.Equal(t, 0, out.Data.Updated)
	assert.Equal(t, 0, out.Data.WebhooksSent)
	assert.Equal(t, 0, out.Data.WebhooksFailed)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
	// No UPDATE was expected; a tag write on a skipped lead would fail this.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSendFirstMessageSaveFailureIsNotAWebhookFailure(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	server, hits := countingWebhookServer()
	defer server.Close()
	automation := utils.NewAutomationClient(config.AutomationConfig{TagWebhookURL: server.URL})

	lc := NewLeadController(db, discardLogger(), automation, realtime.NewHub(discardLogger()))
	app := fiber.New()
	app.Post("/send-first-message", lc.SendFirstMessage)

	mock.ExpectQuery(`SELECT \* FROM "leads"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "phone", "tags", "status"}).
			AddRow(7, "Jordan", "Reyes", "+17785552345", "{}", "new"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "leads"`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	out := postBulkSend(t, app, `{"lead_ids": [7]}`)

	assert.Equal(t, 1, out.Data.Errors)
	assert.Equal(t, 0, out.Data.WebhooksFailed)
	assert.Equal(t, 0, out.Data.Updated)
	assert.Equal(t, 0, out.Data.Skipped)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
	assert.NoError(t, mock.ExpectationsWereMet())
}
