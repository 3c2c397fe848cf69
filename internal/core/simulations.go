package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"mockapi/internal/blob"
	"mockapi/pkg/domain"
)

const (
	// CreatedMessage is returned for every accepted simulation.
	CreatedMessage = "Pop Dop Simulation Created Successfully"
	archivePrefix  = "simulations"
)

// SimulationService serves the mocked simulation endpoints. Accepted request
// bodies are written to an optional archive that reads never consult.
type SimulationService struct {
	archive blob.Store
	newID   func() string
	cfg     serviceConfig
}

// NewSimulationService constructs the service. A nil archive disables archiving.
func NewSimulationService(archive blob.Store, opts ...ServiceOption) *SimulationService {
	return &SimulationService{
		archive: archive,
		newID:   func() string { return uuid.NewString() },
		cfg:     newServiceConfig(opts),
	}
}

// Submission is an archived request body.
type Submission struct {
	SimID      string                  `json:"sim_id"`
	ReceivedAt time.Time               `json:"received_at"`
	Request    domain.PopDopSimRequest `json:"request"`
}

// Create accepts a simulation request and returns the fixed creation payload.
// Archive failures are logged and never change the response.
func (s *SimulationService) Create(ctx context.Context, req domain.PopDopSimRequest) (domain.PopDopSimResponse, error) {
	resp := domain.PopDopSimResponse{
		Message:    CreatedMessage,
		SimID:      domain.MockSimulationID,
		Parameters: req.Parameters(),
	}
	err := s.cfg.run(ctx, "simulations.create", func(ctx context.Context) error {
		if s.archive == nil {
			return nil
		}
		key, err := s.store(ctx, domain.MockSimulationID, req)
		if err != nil {
			s.cfg.logger.Warn().Err(err).Str("sim_id", domain.MockSimulationID).Msg("archive simulation request")
			return nil
		}
		s.cfg.logger.Debug().Str("key", key).Msg("simulation request archived")
		return nil
	}, attribute.String("sim.id", domain.MockSimulationID))
	return resp, err
}

func (s *SimulationService) store(ctx context.Context, simID string, req domain.PopDopSimRequest) (string, error) {
	body, err := json.Marshal(Submission{SimID: simID, ReceivedAt: s.cfg.now().UTC(), Request: req})
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}
	key := path.Join(archivePrefix, simID, s.newID()+".json")
	_, err = s.archive.Put(ctx, key, bytes.NewReader(body), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"sim-id": simID},
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// Get returns the fixed status record for simID.
func (s *SimulationService) Get(ctx context.Context, simID string) domain.SimulationStatus {
	_ = s.cfg.run(ctx, "simulations.get", func(context.Context) error { return nil }, attribute.String("sim.id", simID))
	return domain.MockSimulationStatus(simID)
}

// Delete acknowledges a delete for simID. Nothing is removed.
func (s *SimulationService) Delete(ctx context.Context, simID string) string {
	_ = s.cfg.run(ctx, "simulations.delete", func(context.Context) error { return nil }, attribute.String("sim.id", simID))
	return fmt.Sprintf("Simulation %s deleted successfully", simID)
}

// Submissions lists archived bodies for simID ordered by key. Without an
// archive the list is empty.
func (s *SimulationService) Submissions(ctx context.Context, simID string) ([]blob.Info, error) {
	infos := []blob.Info{}
	err := s.cfg.run(ctx, "simulations.submissions", func(ctx context.Context) error {
		if s.archive == nil {
			return nil
		}
		listed, err := s.archive.List(ctx, path.Join(archivePrefix, simID)+"/")
		if err != nil {
			return fmt.Errorf("list submissions for %s: %w", simID, err)
		}
		infos = append(infos, listed...)
		return nil
	}, attribute.String("sim.id", simID))
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Archive returns the configured archive, or nil.
func (s *SimulationService) Archive() blob.Store { return s.archive }
