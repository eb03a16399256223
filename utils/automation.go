package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dealerdesk/config"
	"dealerdesk/models"
)

// AutomationClient posts to the external workflow platform that owns actual
// SMS and voice delivery. Every call is fire-once: a failure is logged and
// reported to the caller, never retried inline. The database write the call
// follows is already committed by the time any of these methods run.
type AutomationClient struct {
	httpClient *http.Client
	cfg        config.AutomationConfig
}

func NewAutomationClient(cfg config.AutomationConfig) *AutomationClient {
	return &AutomationClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cfg:        cfg,
	}
}

// TagCampaignPayload is the body posted when a campaign tag is newly added
// to a lead.
type TagCampaignPayload struct {
	Source    string   `json:"source"`
	LeadID    uint     `json:"lead_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Phone     string   `json:"phone"`
	Tag       string   `json:"tag"`
	Tags      []string `json:"tags"`
	Timestamp string   `json:"timestamp"`
}

// SMSPayload is the body posted for a manual outbound SMS.
type SMSPayload struct {
	ConversationID uint   `json:"conversation_id"`
	Content        string `json:"content"`
	Sender         string `json:"sender"`
	Recipient      string `json:"recipient"`
	SentBy         uint   `json:"sent_by"`
}

// CallPayload is the body posted to initiate an outbound call.
type CallPayload struct {
	LeadID         uint   `json:"lead_id"`
	AgentID        uint   `json:"agent_id"`
	ConversationID uint   `json:"conversation_id"`
	AgentPhone     string `json:"agent_phone"`
	LeadPhone      string `json:"lead_phone"`
	LeadName       string `json:"lead_name"`
}

// TriggerTagCampaign fires the campaign webhook for one newly-added tag.
func (a *AutomationClient) TriggerTagCampaign(lead *models.Lead, tag string) error {
	payload := TagCampaignPayload{
		Source:    "dealerdesk",
		LeadID:    lead.ID,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Phone:     lead.Phone,
		Tag:       tag,
		Tags:      lead.Tags,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	err := a.post(a.cfg.TagWebhookURL, payload)
	if err != nil {
		LogError("tag_webhook_failed", err, map[string]interface{}{
			"lead_id": lead.ID,
			"tag":     tag,
		})
		return err
	}

	LogEvent("tag_webhook_sent", map[string]interface{}{
		"lead_id": lead.ID,
		"tag":     tag,
	})
	return nil
}

// SendSMS forwards a manual outbound message to the provider webhook.
func (a *AutomationClient) SendSMS(payload SMSPayload) error {
	err := a.post(a.cfg.SMSWebhookURL, payload)
	if err != nil {
		LogError("sms_webhook_failed", err, map[string]interface{}{
			"conversation_id": payload.ConversationID,
		})
		return err
	}
	return nil
}

// InitiateCall asks the automation platform to bridge an outbound call.
func (a *AutomationClient) InitiateCall(payload CallPayload) error {
	err := a.post(a.cfg.CallWebhookURL, payload)
	if err != nil {
		LogError("call_webhook_failed", err, map[string]interface{}{
			"lead_id":  payload.LeadID,
			"agent_id": payload.AgentID,
		})
		return err
	}
	return nil
}

func (a *AutomationClient) post(url string, payload interface{}) error {
	if url == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Auth-Token", a.cfg.Token)
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// LogError logs errors with structured context to both console and Sentry
func LogError(errorType string, err error, context map[string]interface{}) {
	log := logrus.WithFields(logrus.Fields{
		"error_type": errorType,
		"error":      err.Error(),
	})

	for k, v := range context {
		log = log.WithField(k, v)
	}

	log.Error("Error occurred")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// LogEvent logs events with structured context
func LogEvent(eventType string, data map[string]interface{}) {
	log := logrus.WithFields(logrus.Fields{
		"event_type": eventType,
	})

	for k, v := range data {
		log = log.WithField(k, v)
	}

	log.Info("Event occurred")

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}
