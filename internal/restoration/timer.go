package restoration

import (
	"context"
	"time"

	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
)

// StartTimer records a new waiting hold-timer for incidentID, expiring
// hold-duration after recoveryTime, and registers it in the restoration
// timer set for operational inspection.
func StartTimer(ctx context.Context, st store.Store, incidentID string, tier incident.SLATier, recoveryTime time.Time) (incident.HoldTimerRecord, error) {
	hold := incident.HoldDuration(tier)
	record := incident.HoldTimerRecord{
		ID:           store.TimerKey(incidentID),
		IncidentID:   incidentID,
		SLATier:      tier,
		RecoveryTime: recoveryTime,
		ExpiryTime:   recoveryTime.Add(hold),
		Status:       incident.HoldTimerWaiting,
	}

	if err := putTimer(ctx, st, record); err != nil {
		return incident.HoldTimerRecord{}, err
	}
	if err := st.ZAdd(ctx, store.RestorationTimersKey(), float64(record.ExpiryTime.Unix()), record.ID, 0); err != nil {
		return incident.HoldTimerRecord{}, err
	}
	return record, nil
}

// CancelTimer marks a timer cancelled: the link degraded again during WAIT,
// so control must return to POLL rather than proceed to VERIFY.
func CancelTimer(ctx context.Context, st store.Store, incidentID string) error {
	record, ok, err := GetTimer(ctx, st, incidentID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	record.Status = incident.HoldTimerCancelled
	return putTimer(ctx, st, record)
}

// CheckTimer reports whether the hold timer has expired as of now.
func CheckTimer(ctx context.Context, st store.Store, incidentID string, now time.Time) (expired bool, record incident.HoldTimerRecord, err error) {
	record, ok, err := GetTimer(ctx, st, incidentID)
	if err != nil {
		return false, incident.HoldTimerRecord{}, err
	}
	if !ok {
		return true, incident.HoldTimerRecord{Status: incident.HoldTimerExpired}, nil
	}
	if record.Status == incident.HoldTimerCancelled {
		return false, record, nil
	}
	if !now.Before(record.ExpiryTime) {
		record.Status = incident.HoldTimerExpired
		if err := putTimer(ctx, st, record); err != nil {
			return false, record, err
		}
		return true, record, nil
	}
	return false, record, nil
}

// GetTimer reads the incident's current hold-timer record.
func GetTimer(ctx context.Context, st store.Store, incidentID string) (incident.HoldTimerRecord, bool, error) {
	data, ok, err := st.GetJSON(ctx, store.TimerKey(incidentID))
	if err != nil || !ok {
		return incident.HoldTimerRecord{}, ok, err
	}
	record, err := decodeTimer(data)
	return record, true, err
}
