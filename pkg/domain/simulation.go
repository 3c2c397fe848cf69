package domain

// MockSimulationID is the identifier handed out for every created simulation.
const MockSimulationID = "sim_12345"

// PopDopSimRequest holds the parameters of a POP DOP particle simulation.
type PopDopSimRequest struct {
	ParticleCount int                `json:"particle_count"`
	BirthRate     float64            `json:"birth_rate"`
	Velocity      map[string]float64 `json:"velocity"`
	Turbulence    float64            `json:"turbulence"`
}

// Parameters echoes the request fields as a generic object.
func (r PopDopSimRequest) Parameters() map[string]any {
	velocity := make(map[string]float64, len(r.Velocity))
	for axis, v := range r.Velocity {
		velocity[axis] = v
	}
	return map[string]any{
		"particle_count": r.ParticleCount,
		"birth_rate":     r.BirthRate,
		"velocity":       velocity,
		"turbulence":     r.Turbulence,
	}
}

// PopDopSimResponse is returned by simulation creation.
type PopDopSimResponse struct {
	Message    string         `json:"message"`
	SimID      string         `json:"sim_id"`
	Parameters map[string]any `json:"parameters"`
}

// SimulationStatus is the record returned when reading a simulation.
type SimulationStatus struct {
	SimID         string             `json:"sim_id"`
	Status        string             `json:"status"`
	ParticleCount int                `json:"particle_count"`
	BirthRate     float64            `json:"birth_rate"`
	Velocity      map[string]float64 `json:"velocity"`
	Turbulence    float64            `json:"turbulence"`
}

// MockSimulationStatus returns the fixed record served for every simulation id.
func MockSimulationStatus(simID string) SimulationStatus {
	return SimulationStatus{
		SimID:         simID,
		Status:        "Running",
		ParticleCount: 10000,
		BirthRate:     500.0,
		Velocity:      map[string]float64{"x": 0.0, "y": 1.5, "z": 0.0},
		Turbulence:    0.25,
	}
}
