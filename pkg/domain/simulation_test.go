package domain

import "testing"

func TestParametersEchoesRequest(t *testing.T) {
	req := PopDopSimRequest{
		ParticleCount: 5,
		BirthRate:     1.5,
		Velocity:      map[string]float64{"x": 1},
		Turbulence:    0.1,
	}
	params := req.Parameters()
	if params["particle_count"] != 5 || params["birth_rate"] != 1.5 || params["turbulence"] != 0.1 {
		t.Fatalf("unexpected parameters %+v", params)
	}
	req.Velocity["x"] = 9
	if v := params["velocity"].(map[string]float64); v["x"] != 1 {
		t.Fatalf("velocity must be copied, got %v", v)
	}
}

func TestMockSimulationStatusIgnoresID(t *testing.T) {
	a, b := MockSimulationStatus("a"), MockSimulationStatus("zzz")
	if a.SimID != "a" || b.SimID != "zzz" {
		t.Fatalf("sim id should be echoed")
	}
	if a.Status != "Running" || a.ParticleCount != 10000 || a.BirthRate != 500 || a.Turbulence != 0.25 {
		t.Fatalf("unexpected status %+v", a)
	}
	if a.Velocity["y"] != 1.5 || len(a.Velocity) != 3 {
		t.Fatalf("unexpected velocity %v", a.Velocity)
	}
	a.Velocity["y"] = 0
	if MockSimulationStatus("a").Velocity["y"] != 1.5 {
		t.Fatalf("each status must carry its own velocity map")
	}
}
