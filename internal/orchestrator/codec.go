package orchestrator

import (
	"encoding/json"

	"github.com/netguard/fabric/internal/incident"
)

func encodeIncident(inc *incident.Incident) ([]byte, error) {
	return json.Marshal(inc)
}

func decodeIncident(data []byte) (*incident.Incident, error) {
	var inc incident.Incident
	if err := json.Unmarshal(data, &inc); err != nil {
		return nil, err
	}
	return &inc, nil
}
