// Package trafficanalytics predicts link congestion before it breaches SLA
// and sends a proactive alert straight to the orchestrator, which runs it
// through the same state machine a reactive PCA/CNC alert reaches after
// correlation, per the Traffic Analytics agent's collect ->
// build_matrix -> predict_congestion -> analyze_risk -> (alert | warn | log)
// flow.
package trafficanalytics

import "time"

// SRPMMetric is one SR Performance Measurement sample for a head-end/
// end-point path, covering SR-MPLS (via BSID) and SRv6 (via locator pair)
// identification.
type SRPMMetric struct {
	MetricID      string
	Timestamp     time.Time
	HeadEnd       string
	EndPoint      string
	SRPolicyBSID  int
	SRv6Locator   string
	SourceLocator string
	DestLocator   string
	TrafficGbps   float64
	LatencyMS     float64
	JitterMS      float64
	PacketLossPct float64
}

// InterfaceCounter is one Model-Driven Telemetry interface sample.
type InterfaceCounter struct {
	DeviceName      string
	InterfaceName   string
	Timestamp       time.Time
	BytesIn         int64
	BytesOut        int64
	UtilizationPct  float64
	CapacityGbps    float64
}

// FlowRecord is one NetFlow/IPFIX flow.
type FlowRecord struct {
	FlowID      string
	Timestamp   time.Time
	SrcIP       string
	DstIP       string
	SRv6SID     string
	SRv6Locator string
	Bytes       int64
	Packets     int64
	SrcPE       string
	DstPE       string
}

// TelemetryData is the unified collection window across all three sources.
type TelemetryData struct {
	CollectionTimestamp time.Time
	WindowMinutes       int
	SRPM                []SRPMMetric
	MDT                 []InterfaceCounter
	NetFlow             []FlowRecord
}

// TotalRecords returns the combined sample count across all sources.
func (t TelemetryData) TotalRecords() int {
	return len(t.SRPM) + len(t.MDT) + len(t.NetFlow)
}
