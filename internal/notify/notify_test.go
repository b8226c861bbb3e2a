package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return store.NewRedisStoreFromClient(client)
}

type fakeChannel struct {
	name    string
	succeed bool
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(ctx context.Context, msg Message, cfg TierConfig) ChannelResult {
	if !f.succeed {
		return ChannelResult{Channel: f.name, Error: "simulated failure"}
	}
	return ChannelResult{Channel: f.name, Success: true, MessageID: "msg-" + f.name}
}

func TestSelectChannelsAlwaysAddsServiceNowForIncidentDetected(t *testing.T) {
	cfg := SelectChannels(incident.TierBronze, EventIncidentDetected)
	assert.Contains(t, cfg.Channels, "servicenow")
	assert.Contains(t, cfg.Channels, "email")
}

func TestSelectChannelsLeavesBronzeAloneForProtectionActive(t *testing.T) {
	cfg := SelectChannels(incident.TierBronze, EventProtectionActive)
	assert.Equal(t, []string{"email"}, cfg.Channels)
}

func TestSelectChannelsDoesNotMutateSharedTierConfig(t *testing.T) {
	SelectChannels(incident.TierBronze, EventEscalation)
	cfg := SelectChannels(incident.TierBronze, EventProtectionActive)
	assert.NotContains(t, cfg.Channels, "servicenow", "escalation call must not have mutated the shared Bronze config")
}

func TestFormatRendersSubjectAndBodyFromData(t *testing.T) {
	msg := Format(Request{
		IncidentID: "INC-1",
		EventType:  EventRestorationComplete,
		Severity:   SeverityLow,
		Data: map[string]any{
			"duration_minutes": 12,
			"cutover_mode":     "gradual",
		},
	})
	assert.Contains(t, msg.Subject, "INC-1")
	assert.Contains(t, msg.Body, "12")
	assert.Contains(t, msg.Body, "gradual")
}

func TestSendNotificationReportsSuccessesAndFailures(t *testing.T) {
	svc := NewService([]Channel{
		&fakeChannel{name: "webex", succeed: true},
		&fakeChannel{name: "email", succeed: true},
	}, nil)

	resp := svc.SendNotification(context.Background(), Request{
		IncidentID: "INC-2",
		EventType:  EventProtectionActive,
		SLATier:    incident.TierSilver,
	})

	assert.ElementsMatch(t, []string{"webex", "email"}, resp.ChannelsSucceeded)
	assert.Empty(t, resp.ChannelsFailed)
	assert.Equal(t, "msg-webex", resp.WebexMessageID)
}

func TestSendNotificationTracksUnconfiguredChannelAsFailure(t *testing.T) {
	svc := NewService([]Channel{&fakeChannel{name: "webex", succeed: true}}, nil)

	resp := svc.SendNotification(context.Background(), Request{
		IncidentID: "INC-3",
		EventType:  EventIncidentDetected,
		SLATier:    incident.TierGold,
	})

	assert.Contains(t, resp.ChannelsFailed, "servicenow")
	assert.Contains(t, resp.ChannelsFailed, "email")
	assert.Contains(t, resp.ChannelsSucceeded, "webex")
}

func TestAuditLogRecordAssignsIDAndAppendsNewestFirst(t *testing.T) {
	log := NewAuditLog(newTestStore(t))
	ctx := context.Background()

	first, err := log.Record(ctx, AuditEvent{IncidentID: "INC-4", AgentName: "correlator", EventType: AuditAlertCorrelated})
	require.NoError(t, err)
	assert.NotEmpty(t, first.EventID)

	second, err := log.Record(ctx, AuditEvent{IncidentID: "INC-4", AgentName: "pathcompute", EventType: AuditPathComputed})
	require.NoError(t, err)

	timeline, err := log.Timeline(ctx, "INC-4")
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, second.EventID, timeline[0].EventID, "newest event first")
	assert.Equal(t, first.EventID, timeline[1].EventID)
}

func TestSummarizeComputesDurationAndOutcome(t *testing.T) {
	events := []AuditEvent{
		{EventType: AuditRestorationComplete, Timestamp: mustParseRFC3339(t, "2026-01-01T00:10:00Z")},
		{EventType: AuditIncidentCreated, Timestamp: mustParseRFC3339(t, "2026-01-01T00:00:00Z")},
	}

	summary := Summarize("INC-5", events)
	assert.Equal(t, "restoration_complete", summary.FinalOutcome)
	assert.Equal(t, int64(600), summary.TotalDurationSeconds)
}

func TestHandlerLogEventDefaultsUnsetFields(t *testing.T) {
	h := NewHandler(nil, NewAuditLog(newTestStore(t)))

	out, err := h.LogEvent(context.Background(), map[string]any{
		"incident_id": "INC-6",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out["event_id"])

	timeline, err := h.Audit.Timeline(context.Background(), "INC-6")
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, "unknown", timeline[0].AgentName)
	assert.Equal(t, AuditStateChange, timeline[0].EventType)
}

func TestHandlerGetTimelineReturnsEmptySliceForUnknownIncident(t *testing.T) {
	h := NewHandler(nil, NewAuditLog(newTestStore(t)))
	out, err := h.GetTimeline(context.Background(), map[string]any{"incident_id": "INC-UNKNOWN"})
	require.NoError(t, err)
	assert.Empty(t, out["events"])
}

func TestHandlerDispatchRoutesByTaskType(t *testing.T) {
	h := NewHandler(nil, NewAuditLog(newTestStore(t)))
	_, err := h.Dispatch(context.Background(), "log_event", map[string]any{"incident_id": "INC-7"})
	require.NoError(t, err)

	_, err = h.Dispatch(context.Background(), "unsupported_task", map[string]any{})
	assert.Error(t, err)
}

func mustParseRFC3339(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}
