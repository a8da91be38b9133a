package playbook

import "testing"

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if len(p.Rules()) != 3 {
		t.Errorf("expected 3 ordered rules, got %d", len(p.Rules()))
	}
}

func TestPlaybook_Select(t *testing.T) {
	p := New()
	tests := []struct {
		name           string
		recommendation string
		wantAction     string
		wantText       string
	}{
		{"isolate", "Isolate affected system immediately for Malware.", ActionQuarantine, "System quarantined."},
		{"block ip", "Block IP 10.0.0.1", ActionBlock, "Threat blocked."},
		{"deep scan", "Perform deep scan for SQL Injection.", ActionRecovery, "Recovery procedures initiated."},
		{"review user activity", "Review user activity for Phishing.", ActionRecovery, "Recovery procedures initiated."},
		{"fallback", "Notify the on-call team.", ActionGeneral, "Executing general remediation for Zero Day."},
		{"case insensitive", "ISOLATE NOW", ActionQuarantine, "System quarantined."},
		{"isolate wins over rotate", "Isolate affected system immediately and rotate secret for Zero Day.", ActionQuarantine, "System quarantined."},
		{"isolate wins over block", "Block IP then isolate host.", ActionQuarantine, "System quarantined."},
		{"block ip must be adjacent", "Block source IP for DDoS.", ActionGeneral, "Executing general remediation for Zero Day."},
		{"block without ip", "Block the attacker.", ActionGeneral, "Executing general remediation for Zero Day."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := p.Select(tt.recommendation)
			if rule.Action != tt.wantAction {
				t.Errorf("Select(%q).Action = %q, want %q", tt.recommendation, rule.Action, tt.wantAction)
			}
			if got := rule.Describe("Zero Day"); got != tt.wantText {
				t.Errorf("Describe = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestPlaybook_Select_Deterministic(t *testing.T) {
	p := New()
	rec := "Perform deep scan for Malware."
	first := p.Select(rec)
	for i := 0; i < 100; i++ {
		if got := p.Select(rec); got != first {
			t.Fatalf("Select changed between calls: %s vs %s", first.ID, got.ID)
		}
	}
}

func TestPlaybook_NeedsSecretRotation(t *testing.T) {
	p := New()
	cases := map[string]bool{
		"Isolate affected system immediately and rotate secret for Zero Day.": true,
		"Reset leaked Credential material.":                                   true,
		"Block source IP for DDoS.":                                           false,
		"":                                                                    false,
	}
	for rec, want := range cases {
		if got := p.NeedsSecretRotation(rec); got != want {
			t.Errorf("NeedsSecretRotation(%q) = %v, want %v", rec, got, want)
		}
	}
}
