package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealerdesk/config"
	"dealerdesk/models"
)

func TestTriggerTagCampaign(t *testing.T) {
	var got TagCampaignPayload
	var headers http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewAutomationClient(config.AutomationConfig{
		TagWebhookURL: server.URL,
		Token:         "secret-token",
	})

	lead := &models.Lead{
		FirstName: "Jordan",
		LastName:  "Reyes",
		Phone:     "+17785552345",
		Tags:      pq.StringArray{"Hot_Lead", "Trade_In"},
	}
	lead.ID = 7

	require.NoError(t, client.TriggerTagCampaign(lead, "Hot_Lead"))

	assert.Equal(t, "secret-token", headers.Get("X-Auth-Token"))
	assert.NotEmpty(t, headers.Get("X-Request-ID"))
	assert.Equal(t, "application/json", headers.Get("Content-Type"))

	assert.Equal(t, "dealerdesk", got.Source)
	assert.Equal(t, uint(7), got.LeadID)
	assert.Equal(t, "Hot_Lead", got.Tag)
	assert.Equal(t, []string{"Hot_Lead", "Trade_In"}, got.Tags)
	assert.Equal(t, "+17785552345", got.Phone)
	assert.NotEmpty(t, got.Timestamp)
}

func TestTriggerTagCampaignNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewAutomationClient(config.AutomationConfig{TagWebhookURL: server.URL})

	lead := &models.Lead{Phone: "+17785552345"}
	err := client.TriggerTagCampaign(lead, "Hot_Lead")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestAutomationClientUnconfiguredURL(t *testing.T) {
	client := NewAutomationClient(config.AutomationConfig{})

	err := client.SendSMS(SMSPayload{ConversationID: 1, Content: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSendSMSPayload(t *testing.T) {
	var got SMSPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	client := NewAutomationClient(config.AutomationConfig{SMSWebhookURL: server.URL})

	require.NoError(t, client.SendSMS(SMSPayload{
		ConversationID: 3,
		Content:        "Your appraisal is ready",
		Sender:         "+16045550000",
		Recipient:      "+17785552345",
		SentBy:         2,
	}))

	assert.Equal(t, uint(3), got.ConversationID)
	assert.Equal(t, "+17785552345", got.Recipient)
	assert.Equal(t, uint(2), got.SentBy)
}

func TestInitiateCallPayload(t *testing.T) {
	var got CallPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	client := NewAutomationClient(config.AutomationConfig{CallWebhookURL: server.URL})

	require.NoError(t, client.InitiateCall(CallPayload{
		LeadID:     7,
		AgentID:    2,
		AgentPhone: "+16045550000",
		LeadPhone:  "+17785552345",
		LeadName:   "Jordan Reyes",
	}))

	assert.Equal(t, uint(7), got.LeadID)
	assert.Equal(t, "+16045550000", got.AgentPhone)
	assert.Equal(t, "Jordan Reyes", got.LeadName)
}
