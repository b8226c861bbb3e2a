package restoration

import (
	"context"
	"encoding/json"

	"github.com/netguard/fabric/internal/incident"
	"github.com/netguard/fabric/internal/store"
)

// putTimer writes a hold-timer record with no TTL: the restoration timer
// set (store.RestorationTimersKey) is the index used for operational
// inspection and cleanup, so the record itself is kept around rather than
// expired out from under that index.
func putTimer(ctx context.Context, st store.Store, record incident.HoldTimerRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return st.SetJSON(ctx, store.TimerKey(record.IncidentID), data, 0)
}

func decodeTimer(data []byte) (incident.HoldTimerRecord, error) {
	var record incident.HoldTimerRecord
	err := json.Unmarshal(data, &record)
	return record, err
}
