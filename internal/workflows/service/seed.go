package service

import (
	"context"
	_ "embed"
	"fmt"

	"resort_crm_backend/internal/workflows/engine"
	"resort_crm_backend/internal/workflows/repository"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultDefinitions []byte

type seedFile struct {
	Workflows []seedWorkflow `yaml:"workflows"`
}

type seedWorkflow struct {
	Name       string             `yaml:"name"`
	Trigger    engine.TriggerType `yaml:"trigger"`
	Conditions []engine.Condition `yaml:"conditions"`
	Actions    []engine.Action    `yaml:"actions"`
}

// SeedDefaults installs the bundled workflow definitions on an empty table.
// A database that already has workflows is left alone.
func (s *Service) SeedDefaults(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var file seedFile
	if err := yaml.Unmarshal(defaultDefinitions, &file); err != nil {
		return fmt.Errorf("parse default workflows: %w", err)
	}
	for _, seed := range file.Workflows {
		_, err := s.repo.Create(ctx, repository.Workflow{
			ID:          uuid.New(),
			Name:        seed.Name,
			TriggerType: seed.Trigger,
			Conditions:  seed.Conditions,
			Actions:     seed.Actions,
			IsActive:    true,
		})
		if err != nil {
			return fmt.Errorf("seed workflow %q: %w", seed.Name, err)
		}
		s.log.Info("seeded default workflow", "name", seed.Name)
	}
	return nil
}
