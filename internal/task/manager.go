// =============================================
// File: internal/task/manager.go
// =============================================
// Package task loads and validates scripted registry operations.
package task

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manager handles task loading and processing
type Manager struct {
	logger *zap.Logger
}

// NewManager creates a new task manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

type script struct {
	Tasks []Task `yaml:"tasks"`
}

// LoadTasks reads tasks from a YAML script file. Tasks run in file
// order; a buy/sell/add_liquidity task must name a token alias defined
// by an earlier launch task in the same script.
func (m *Manager) LoadTasks(path string) ([]Task, error) {
	m.logger.Debug("Loading tasks", zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file error: %w", err)
	}

	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse YAML error: %w", err)
	}

	if len(s.Tasks) == 0 {
		return nil, fmt.Errorf("no tasks found in %s", path)
	}

	launched := make(map[string]bool)
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("task %d (%s): %w", i+1, t.Name, err)
		}
		if t.Operation == OperationLaunch {
			if launched[t.Token] {
				return nil, fmt.Errorf("task %d (%s): token alias %q already launched", i+1, t.Name, t.Token)
			}
			launched[t.Token] = true
		} else if !launched[t.Token] {
			return nil, fmt.Errorf("task %d (%s): token alias %q not launched by an earlier task", i+1, t.Name, t.Token)
		}
	}

	m.logger.Info("Tasks loaded", zap.Int("count", len(s.Tasks)))
	return s.Tasks, nil
}
