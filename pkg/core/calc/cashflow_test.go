package calc

import (
	"testing"

	n "finstat/pkg/core/normalize"
)

func TestClassifyCashFlow(t *testing.T) {
	tests := []struct {
		op, inv, fin float64
		signs        string
		name         string
		health       Health
	}{
		{100, 50, 20, "+++", "cash accumulation", HealthCaution},
		{100, 50, -20, "++-", "asset restructuring", HealthCaution},
		{100, -50, 20, "+-+", "aggressive expansion", HealthHealthy},
		{100, -50, -20, "+--", "healthy growth", HealthHealthy},
		{-100, 50, 20, "-++", "distress funding", HealthCritical},
		{-100, 50, -20, "-+-", "recovery/restructuring", HealthCaution},
		{-100, -50, 20, "--+", "early-stage/distress funding", HealthCritical},
		{-100, -50, -20, "---", "cash depletion", HealthCritical},
		// zero counts as positive
		{0, 0, 0, "+++", "cash accumulation", HealthCaution},
		{0, -1, 0, "+-+", "aggressive expansion", HealthHealthy},
	}
	for _, tt := range tests {
		p := ClassifyCashFlow(tt.op, tt.inv, tt.fin)
		if p.Signs != tt.signs || p.Name != tt.name || p.Health != tt.health {
			t.Errorf("ClassifyCashFlow(%v, %v, %v) = %s %q %s, want %s %q %s",
				tt.op, tt.inv, tt.fin, p.Signs, p.Name, p.Health, tt.signs, tt.name, tt.health)
		}
		if p.Description == "" {
			t.Errorf("pattern %s has no description", p.Signs)
		}
	}
}

func flow(c byte) float64 {
	if c == '-' {
		return -1
	}
	return 1
}

func TestAllPatterns(t *testing.T) {
	all := AllPatterns()
	if len(all) != 8 {
		t.Fatalf("got %d patterns, want 8", len(all))
	}
	signs := map[string]bool{}
	names := map[string]bool{}
	for _, p := range all {
		signs[p.Signs] = true
		names[p.Name] = true
		if got := ClassifyCashFlow(flow(p.Signs[0]), flow(p.Signs[1]), flow(p.Signs[2])); got != p {
			t.Errorf("pattern %s: classify returns %+v", p.Signs, got)
		}
	}
	if len(signs) != 8 || len(names) != 8 {
		t.Errorf("patterns are not distinct: %d sign keys, %d names", len(signs), len(names))
	}
}

func TestAnalyzeCashFlow(t *testing.T) {
	cf, ok := AnalyzeCashFlow(Figures{
		n.AcctCFOperating: 200,
		n.AcctCFInvesting: -120,
		n.AcctCFFinancing: -30,
	})
	if !ok {
		t.Fatal("expected an analysis")
	}
	if cf.Pattern.Signs != "+--" || cf.FreeCashFlow != 80 {
		t.Errorf("got %s, free cash flow %v", cf.Pattern.Signs, cf.FreeCashFlow)
	}
	if _, ok := AnalyzeCashFlow(Figures{n.AcctCFOperating: 200}); ok {
		t.Error("missing activity totals should not be analyzed")
	}
}
