package restoration

import (
	"context"
	"fmt"

	"github.com/netguard/fabric/internal/incident"
)

// WeightUpdater applies an ECMP weight pair between the protection tunnel
// and the original path via the northbound controller.
type WeightUpdater interface {
	UpdateWeights(ctx context.Context, protectionTunnelID, originalPathID string, protectionWeight, originalWeight int) error
}

// CutoverResult reports how a cutover attempt concluded.
type CutoverResult struct {
	Success       bool
	StagesApplied []incident.CutoverStage
	RolledBack    bool
	Message       string
}

// Immediate sets the protection weight straight to zero. A controller
// failure is not retried here: the caller escalates.
func Immediate(ctx context.Context, w WeightUpdater, protectionTunnelID, originalPathID string) CutoverResult {
	if err := w.UpdateWeights(ctx, protectionTunnelID, originalPathID, 0, 100); err != nil {
		return CutoverResult{Success: false, Message: err.Error()}
	}
	return CutoverResult{
		Success:       true,
		StagesApplied: []incident.CutoverStage{{ProtectionWeight: 0, OriginalWeight: 100}},
	}
}

// VerifySLA re-samples the original path and reports whether it still
// meets the tier's thresholds; Gradual uses this between stages to decide
// whether to continue or roll back.
type VerifySLA func(ctx context.Context) (ok bool, err error)

// preCutoverBaseline is the ECMP split in effect before Gradual's first
// stage: all traffic on the protection tunnel, none on the original path. A
// regression detected right after stage 0 rolls back to this, not to a
// nonexistent "stage -1".
var preCutoverBaseline = incident.CutoverStage{ProtectionWeight: 100, OriginalWeight: 0}

// Gradual executes the staged ECMP migration: (75/25) -> (50/50) ->
// (25/75) -> (0/100), re-verifying SLA between stages. A regression rolls
// back to the previous stage's weights (or, after stage 0, to the
// pre-cutover baseline) and stops — the protection tunnel stays up and the
// caller returns control to POLL. The protection tunnel is only torn down
// by the caller after Gradual reports Success with every stage applied.
func Gradual(ctx context.Context, w WeightUpdater, protectionTunnelID, originalPathID string, verify VerifySLA, sleep func()) CutoverResult {
	stages := incident.GradualCutoverStages()
	applied := make([]incident.CutoverStage, 0, len(stages))

	for i, stage := range stages {
		if err := w.UpdateWeights(ctx, protectionTunnelID, originalPathID, stage.ProtectionWeight, stage.OriginalWeight); err != nil {
			return CutoverResult{Success: false, StagesApplied: applied, Message: fmt.Sprintf("stage %d weight update failed: %v", i, err)}
		}
		applied = append(applied, stage)

		if i == len(stages)-1 {
			break
		}

		if sleep != nil {
			sleep()
		}

		if verify == nil {
			continue
		}
		ok, err := verify(ctx)
		if err != nil {
			return CutoverResult{Success: false, StagesApplied: applied, Message: err.Error()}
		}
		if !ok {
			prev := preCutoverBaseline
			if i > 0 {
				prev = stages[i-1]
			}
			if rollbackErr := w.UpdateWeights(ctx, protectionTunnelID, originalPathID, prev.ProtectionWeight, prev.OriginalWeight); rollbackErr != nil {
				return CutoverResult{Success: false, StagesApplied: applied, Message: rollbackErr.Error()}
			}
			return CutoverResult{Success: false, StagesApplied: applied, RolledBack: true, Message: "SLA regressed during gradual cutover"}
		}
	}

	return CutoverResult{Success: true, StagesApplied: applied}
}
