package controller

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dealerdesk/config"
	"dealerdesk/models"
	"dealerdesk/utils"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return db, mock, func() { sqlDB.Close() }
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// countingWebhookServer answers 200 and counts how many POSTs arrive.
func countingWebhookServer() (*httptest.Server, *int32) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	return server, &hits
}

func TestTriggerCampaignsSkipsEnrolledLead(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	server, hits := countingWebhookServer()
	defer server.Close()
	client := utils.NewAutomationClient(config.AutomationConfig{TagWebhookURL: server.URL})

	mock.ExpectQuery(`SELECT \* FROM "tag_campaigns"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tag", "name", "is_active"}).
			AddRow(3, "Hot_Lead", "Hot Lead Follow-Up", true))
	mock.ExpectQuery(`SELECT \* FROM "campaign_enrollments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "lead_id", "campaign_id"}).
			AddRow(11, 7, 3))

	lead := &models.Lead{Tags: pq.StringArray{"Hot_Lead"}}
	lead.ID = 7

	triggered, failed := TriggerCampaignsForTags(db, client, discardLogger(), lead, []string{"Hot_Lead"})

	assert.Equal(t, 0, triggered)
	assert.Equal(t, 0, failed)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerCampaignsEnrollsAfterSuccessfulWebhook(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	server, hits := countingWebhookServer()
	defer server.Close()
	client := utils.NewAutomationClient(config.AutomationConfig{TagWebhookURL: server.URL})

	mock.ExpectQuery(`SELECT \* FROM "tag_campaigns"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tag", "name", "is_active"}).
			AddRow(3, "Hot_Lead", "Hot Lead Follow-Up", true))
	mock.ExpectQuery(`SELECT \* FROM "campaign_enrollments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "campaign_enrollments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	lead := &models.Lead{Tags: pq.StringArray{"Hot_Lead"}}
	lead.ID = 7

	triggered, failed := TriggerCampaignsForTags(db, client, discardLogger(), lead, []string{"Hot_Lead"})

	assert.Equal(t, 1, triggered)
	assert.Equal(t, 0, failed)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerCampaignsWebhookFailureLeavesNoEnrollment(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()
	client := utils.NewAutomationClient(config.AutomationConfig{TagWebhookURL: server.URL})

	mock.ExpectQuery(`SELECT \* FROM "tag_campaigns"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tag", "name", "is_active"}).
			AddRow(3, "Hot_Lead", "Hot Lead Follow-Up", true))
	mock.ExpectQuery(`SELECT \* FROM "campaign_enrollments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	lead := &models.Lead{Tags: pq.StringArray{"Hot_Lead"}}
	lead.ID = 7

	triggered, failed := TriggerCampaignsForTags(db, client, discardLogger(), lead, []string{"Hot_Lead"})

	assert.Equal(t, 0, triggered)
	assert.Equal(t, 1, failed)
	// No INSERT was expected; a stray enrollment write would fail this.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTriggerCampaignsNoActiveCampaign(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	server, hits := countingWebhookServer()
	defer server.Close()
	client := utils.NewAutomationClient(config.AutomationConfig{TagWebhookURL: server.URL})

	mock.ExpectQuery(`SELECT \* FROM "tag_campaigns"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tag", "name", "is_active"}))

	lead := &models.Lead{Tags: pq.StringArray{"Paused_Tag"}}
	lead.ID = 7

	triggered, failed := TriggerCampaignsForTags(db, client, discardLogger(), lead, []string{"Paused_Tag"})

	assert.Equal(t, 0, triggered)
	assert.Equal(t, 0, failed)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
	assert.NoError(t, mock.ExpectationsWereMet())
}
