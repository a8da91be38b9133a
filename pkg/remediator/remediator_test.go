package remediator

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invisible-tech/aicompliance/internal/randutil"
	"github.com/invisible-tech/aicompliance/internal/types"
	"github.com/invisible-tech/aicompliance/pkg/sink"
	"github.com/invisible-tech/aicompliance/pkg/sink/sinktest"
)

func newTestRemediator(seed uint64, s sink.Sink) *Remediator {
	return New(Config{AgentID: "Remediator-T", Rand: randutil.New(seed), Sink: s}, logrus.New())
}

var sampleResults = []*types.AnalysisResult{
	{ThreatType: "DDoS", Severity: "Low", Recommendation: "Block source IP for DDoS.", AnomalyDetails: "High traffic from single source."},
	{ThreatType: "Malware", Severity: "High", Recommendation: "Isolate affected system immediately for Malware.", AnomalyDetails: "Malicious file detected."},
	{ThreatType: "SQL Injection", Severity: "Medium", Recommendation: "Perform deep scan for SQL Injection.", AnomalyDetails: "Unusual database query patterns."},
	{ThreatType: "Zero Day", Severity: "Critical", Recommendation: "Isolate affected system immediately and rotate secret for Zero Day.", AnomalyDetails: "Unknown exploit detected."},
}

func TestNew_StartsActive(t *testing.T) {
	r := newTestRemediator(1, nil)
	rec := r.Record()
	assert.Equal(t, types.StatusActive, rec.Status)
	assert.Equal(t, 100.0, rec.Rate)
}

func TestRemediator_Execute_Actions(t *testing.T) {
	s := sinktest.NewAccepting()
	r := newTestRemediator(2, s)
	ctx := context.Background()

	want := []string{"Executing general remediation for DDoS.", "System quarantined.", "Recovery procedures initiated.", "System quarantined."}
	for i, res := range sampleResults {
		out := r.Execute(ctx, res)
		require.NotNil(t, out)
		assert.Equal(t, want[i], out.Action)
		assert.Equal(t, int64(i+1), out.ActionsTotal)
		if out.Success {
			assert.Equal(t, types.IncidentResolved, out.IncidentStatus)
		} else {
			assert.Equal(t, types.IncidentManualReview, out.IncidentStatus)
		}
	}

	assert.Len(t, s.ForService(sink.ServiceSentinel), 4, "every execution updates Sentinel")
	rotations := s.ForService(sink.ServiceKeyVault)
	require.Len(t, rotations, 1, "only the rotate secret recommendation rotates")
	assert.Contains(t, rotations[0].Summary, "Zero Day")
}

func TestRemediator_Execute_GeneralFallbackAndDefaults(t *testing.T) {
	r := newTestRemediator(3, nil)
	out := r.Execute(context.Background(), &types.AnalysisResult{ThreatType: "Phishing", Recommendation: "Escalate to SOC lead."})
	require.NotNil(t, out)
	assert.Equal(t, "Executing general remediation for Phishing.", out.Action)
	assert.Equal(t, DefaultSeverity, out.Severity)

	out = r.Execute(context.Background(), nil)
	require.NotNil(t, out)
	assert.Equal(t, DefaultThreatType, out.ThreatType)
	assert.Equal(t, "Executing general remediation for Unknown Threat.", out.Action)
}

func TestRemediator_Execute_DeterministicAction(t *testing.T) {
	ctx := context.Background()
	res := &types.AnalysisResult{ThreatType: "Malware", Recommendation: "Review user activity for Malware."}
	for seed := uint64(1); seed <= 50; seed++ {
		out := newTestRemediator(seed, nil).Execute(ctx, res)
		require.NotNil(t, out)
		assert.Equal(t, "Recovery procedures initiated.", out.Action, "seed %d", seed)
		assert.Equal(t, "RMD-003", out.RuleID)
	}
}

func TestRemediator_Execute_NotActive(t *testing.T) {
	s := sinktest.NewAccepting()
	r := newTestRemediator(4, s)
	ctx := context.Background()
	r.Execute(ctx, sampleResults[0])

	r.Pause()
	before := r.Record()
	assert.Nil(t, r.Execute(ctx, sampleResults[0]))
	assert.Equal(t, before, r.Record(), "paused remediator leaves counters unchanged")
	assert.Len(t, s.ForService(sink.ServiceSentinel), 1)

	r.Reset()
	rec := r.Record()
	assert.Equal(t, types.StatusPaused, rec.Status)
	assert.Zero(t, rec.Processed)
	assert.Equal(t, 100.0, rec.Rate)
	assert.Nil(t, r.Execute(ctx, sampleResults[1]))

	r.Activate()
	out := r.Execute(ctx, sampleResults[1])
	require.NotNil(t, out)
	assert.Equal(t, int64(1), out.ActionsTotal)
}

func TestRemediator_SuccessRateBounds(t *testing.T) {
	r := newTestRemediator(5, nil)
	ctx := context.Background()
	failures := 0
	for i := 0; i < 5000; i++ {
		out := r.Execute(ctx, sampleResults[i%len(sampleResults)])
		require.NotNil(t, out)
		assert.GreaterOrEqual(t, out.SuccessRate, 90.0)
		assert.LessOrEqual(t, out.SuccessRate, 100.0)
		if !out.Success {
			failures++
		}
	}
	assert.InDelta(t, 0.02, float64(failures)/5000, 0.01)
}
