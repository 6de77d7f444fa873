package sampler

import "testing"

func TestConfigValidateRejectsNegativeRate(t *testing.T) {
	if err := (Config{Rate: -0.1}).Validate(); err == nil {
		t.Fatal("expected error for negative rate")
	}
}

func TestConfigValidateRejectsRateAboveOne(t *testing.T) {
	if err := (Config{Rate: 1.5}).Validate(); err == nil {
		t.Fatal("expected error for rate > 1")
	}
}

func TestConfigValidateAcceptsBoundaryRates(t *testing.T) {
	for _, r := range []float64{0, 0.5, 1.0} {
		if err := (Config{Rate: r}).Validate(); err != nil {
			t.Fatalf("rate %v rejected: %v", r, err)
		}
	}
}
