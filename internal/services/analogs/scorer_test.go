package analogs

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.ChangeRange != 1.5 || cfg.MinDaysAgo != 30 || cfg.MaxResults != 3 || cfg.DedupDays != 2 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !almostEqual(cfg.ChangeWeight+cfg.VolumeWeight, 1.0) {
		t.Fatalf("weights must sum to 1")
	}
	if cfg.ShortHorizon != 5 || cfg.MediumHorizon != 20 {
		t.Fatalf("unexpected horizons: %d/%d", cfg.ShortHorizon, cfg.MediumHorizon)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"weights":        func(c *Config) { c.VolumeWeight = 0.5 },
		"max results":    func(c *Config) { c.MaxResults = 0 },
		"horizons":       func(c *Config) { c.MediumHorizon = 3 },
		"negative dedup": func(c *Config) { c.DedupDays = -1 },
		"recovery":       func(c *Config) { c.RecoveryWindow = 0 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestScoreIdentity(t *testing.T) {
	cfg := DefaultConfig()
	for _, x := range []float64{-7.3, 0, 5.0, 12.25} {
		for _, v := range []int64{1, 100000, 9_000_000} {
			if got := Score(cfg, x, v, x, v); got != 0 {
				t.Fatalf("Score(%v,%d,%v,%d) = %v, want 0", x, v, x, v, got)
			}
		}
	}
}

func TestScoreChangeOnly(t *testing.T) {
	cfg := DefaultConfig()
	got := Score(cfg, 5.0, 100000, 6.0, 100000)
	if !almostEqual(got, 1.0*cfg.ChangeWeight) {
		t.Fatalf("got %v, want %v", got, cfg.ChangeWeight)
	}
}

func TestScoreVolumeOnly(t *testing.T) {
	cfg := DefaultConfig()
	got := Score(cfg, 5.0, 100000, 5.0, 50000)
	if !almostEqual(got, 0.5*cfg.VolumeWeight) {
		t.Fatalf("got %v, want %v", got, 0.5*cfg.VolumeWeight)
	}
}

func TestScoreZeroReferenceVolume(t *testing.T) {
	cfg := DefaultConfig()
	got := Score(cfg, 5.0, 0, 5.5, 123456)
	if !almostEqual(got, 0.5*cfg.ChangeWeight) {
		t.Fatalf("volume term must collapse to 0, got %v", got)
	}
}

func TestScoreZeroCandidateVolume(t *testing.T) {
	cfg := DefaultConfig()
	got := Score(cfg, 5.0, 100000, 5.0, 0)
	if !almostEqual(got, cfg.VolumeWeight) {
		t.Fatalf("got %v, want %v", got, cfg.VolumeWeight)
	}
}

// The change term is symmetric; the volume term is a ratio against the
// reference, so symmetry is checked with matching or absent volumes.
func TestScoreSymmetry(t *testing.T) {
	cfg := DefaultConfig()
	pairs := [][2]float64{{5.0, 5.5}, {-3.2, 1.1}, {0, 9.9}}
	for _, p := range pairs {
		a, b := p[0], p[1]
		if l, r := Score(cfg, a, 1000, b, 1000), Score(cfg, b, 1000, a, 1000); !almostEqual(l, r) {
			t.Errorf("asymmetric with equal volume: %v vs %v", l, r)
		}
		if l, r := Score(cfg, a, 0, b, 777), Score(cfg, b, 0, a, 42); !almostEqual(l, r) {
			t.Errorf("asymmetric without reference volume: %v vs %v", l, r)
		}
	}
}

func TestScoreNonNegative(t *testing.T) {
	cfg := DefaultConfig()
	for _, c := range []struct {
		rp, cp float64
		rv, cv int64
	}{{5, -5, 10, 1000}, {-1, -2, 1000, 10}, {0, 0, 0, 0}} {
		if s := Score(cfg, c.rp, c.rv, c.cp, c.cv); s < 0 {
			t.Fatalf("negative score %v for %+v", s, c)
		}
	}
}

func TestInRange(t *testing.T) {
	cfg := DefaultConfig()
	if !InRange(cfg, 5.0, 6.5) || !InRange(cfg, 5.0, 3.5) {
		t.Fatalf("band edges must be inclusive")
	}
	if InRange(cfg, 5.0, 6.51) || InRange(cfg, 5.0, 10.0) {
		t.Fatalf("values outside the band must be rejected")
	}
}

func TestInRangeInexactEdges(t *testing.T) {
	cfg := DefaultConfig()
	for _, c := range []struct{ ref, cand float64 }{
		{0.7, 2.2}, {2.2, 0.7}, {0.1, 1.6}, {1.1, 2.6}, {-0.3, 1.2}, {0.7, -0.8},
	} {
		if !InRange(cfg, c.ref, c.cand) {
			t.Errorf("ref %v cand %v: edge of the band must be kept", c.ref, c.cand)
		}
	}
	if InRange(cfg, 0.7, 2.2001) {
		t.Errorf("ref 0.7 cand 2.2001 must be rejected")
	}
}

func TestWindowMatchesInRange(t *testing.T) {
	cfg := DefaultConfig()
	low, high := Window(cfg, 0.7)
	if !InRange(cfg, 0.7, low) || !InRange(cfg, 0.7, high) {
		t.Fatalf("window bounds [%v, %v] must be inside the band", low, high)
	}
}
