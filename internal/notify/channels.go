package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Channel delivers a formatted message to one destination (Webex space,
// ServiceNow instance, SMTP relay, ...) and reports the outcome.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message, cfg TierConfig) ChannelResult
}

// WebexChannel posts msg to a Webex Teams space via the Bot API.
type WebexChannel struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewWebexChannel constructs a client against baseURL, defaulting to a
// 10s-timeout HTTP client when none is supplied.
func NewWebexChannel(baseURL, token string, client *http.Client) *WebexChannel {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebexChannel{BaseURL: baseURL, Token: token, HTTP: client}
}

func (c *WebexChannel) Name() string { return "webex" }

type webexMessageRequest struct {
	RoomID   string `json:"roomId"`
	Markdown string `json:"markdown"`
}

type webexMessageResponse struct {
	ID string `json:"id"`
}

func (c *WebexChannel) Send(ctx context.Context, msg Message, cfg TierConfig) ChannelResult {
	result := ChannelResult{Channel: c.Name(), SentAt: time.Now()}

	body, err := json.Marshal(webexMessageRequest{
		RoomID:   cfg.WebexSpace,
		Markdown: "**" + msg.Subject + "**\n\n" + msg.Body,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("webex send failed: status %d", resp.StatusCode)
		return result
	}

	var out webexMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.MessageID = out.ID
	return result
}

// ServiceNowChannel opens (or updates) an incident ticket via the Table API.
type ServiceNowChannel struct {
	BaseURL  string
	Username string
	Password string
	HTTP     *http.Client
}

// NewServiceNowChannel constructs a client against baseURL, defaulting to a
// 10s-timeout HTTP client when none is supplied.
func NewServiceNowChannel(baseURL, username, password string, client *http.Client) *ServiceNowChannel {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ServiceNowChannel{BaseURL: baseURL, Username: username, Password: password, HTTP: client}
}

func (c *ServiceNowChannel) Name() string { return "servicenow" }

type serviceNowIncidentRequest struct {
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	AssignmentGroup  string `json:"assignment_group"`
	Urgency          string `json:"urgency"`
}

type serviceNowIncidentResponse struct {
	Result struct {
		Number string `json:"number"`
	} `json:"result"`
}

func (c *ServiceNowChannel) Send(ctx context.Context, msg Message, cfg TierConfig) ChannelResult {
	result := ChannelResult{Channel: c.Name(), SentAt: time.Now()}

	body, err := json.Marshal(serviceNowIncidentRequest{
		ShortDescription: msg.Subject,
		Description:      msg.Body,
		AssignmentGroup:  cfg.ServiceNowAssignment,
		Urgency:          "1",
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/now/table/incident", bytes.NewReader(body))
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.Username, c.Password)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		result.Error = fmt.Sprintf("servicenow send failed: status %d", resp.StatusCode)
		return result
	}

	var out serviceNowIncidentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.TicketNumber = out.Result.Number
	return result
}

// EmailChannel sends msg to cfg.EmailRecipients via an HTTP relay (a thin
// facade over SMTP, matching how the carrier's mail gateway is fronted).
type EmailChannel struct {
	BaseURL string
	From    string
	HTTP    *http.Client
}

// NewEmailChannel constructs a client against baseURL, defaulting to a
// 10s-timeout HTTP client when none is supplied.
func NewEmailChannel(baseURL, from string, client *http.Client) *EmailChannel {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &EmailChannel{BaseURL: baseURL, From: from, HTTP: client}
}

func (c *EmailChannel) Name() string { return "email" }

type emailSendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

func (c *EmailChannel) Send(ctx context.Context, msg Message, cfg TierConfig) ChannelResult {
	result := ChannelResult{Channel: c.Name(), Recipients: cfg.EmailRecipients, SentAt: time.Now()}

	body, err := json.Marshal(emailSendRequest{
		From:    c.From,
		To:      cfg.EmailRecipients,
		Subject: msg.Subject,
		Body:    msg.Body,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/send", bytes.NewReader(body))
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		result.Error = fmt.Sprintf("email send failed: status %d", resp.StatusCode)
		return result
	}

	result.Success = true
	result.MessageID = uuid.NewString()
	return result
}
