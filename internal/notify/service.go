package notify

import (
	"context"
	"sync"

	"github.com/netguard/fabric/internal/telemetry"
)

// Service fans a notification request out across the channel set selected
// for its SLA tier and event type, collecting per-channel results.
type Service struct {
	Channels map[string]Channel
	Logger   telemetry.Logger
}

// NewService constructs a Service over the given channel set, keyed by
// Channel.Name(). A nil logger defaults to a no-op logger.
func NewService(channels []Channel, logger telemetry.Logger) *Service {
	if logger == nil {
		logger = telemetry.NewNoopLogger()
	}
	byName := make(map[string]Channel, len(channels))
	for _, c := range channels {
		byName[c.Name()] = c
	}
	return &Service{Channels: byName, Logger: logger}
}

// SendNotification selects channels for req's tier and event type, renders
// the message once, and sends to every selected channel concurrently.
func (s *Service) SendNotification(ctx context.Context, req Request) Response {
	cfg := SelectChannels(req.SLATier, req.EventType)
	msg := Format(req)

	resp := Response{
		IncidentID:        req.IncidentID,
		EventType:         req.EventType,
		ChannelsAttempted: cfg.Channels,
	}

	results := make([]ChannelResult, len(cfg.Channels))
	var wg sync.WaitGroup
	wg.Add(len(cfg.Channels))
	for i, name := range cfg.Channels {
		i, name := i, name
		go func() {
			defer wg.Done()
			ch, ok := s.Channels[name]
			if !ok {
				results[i] = ChannelResult{Channel: name, Error: "channel not configured"}
				return
			}
			results[i] = ch.Send(ctx, msg, cfg)
		}()
	}
	wg.Wait()

	for _, r := range results {
		resp.Results = append(resp.Results, r)
		if r.Success {
			resp.ChannelsSucceeded = append(resp.ChannelsSucceeded, r.Channel)
			switch r.Channel {
			case "servicenow":
				resp.ServiceNowTicket = r.TicketNumber
			case "webex":
				resp.WebexMessageID = r.MessageID
			case "email":
				resp.EmailRecipients = r.Recipients
			}
		} else {
			resp.ChannelsFailed = append(resp.ChannelsFailed, r.Channel)
			s.Logger.Error(ctx, "notification channel send failed",
				"incident_id", req.IncidentID,
				"channel", r.Channel,
				"error", r.Error,
			)
		}
	}

	return resp
}
