package planner

import (
	"encoding/json"
	"os"
	"time"

	"CouncilFund/internal/model"
)

// LoadState reads the planner tables from a JSON file. A missing file yields empty tables.
func LoadState(filePath string) (*model.PlannerState, error) {
	if filePath == "" {
		return &model.PlannerState{}, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.PlannerState{}, nil
		}
		return nil, err
	}
	var state model.PlannerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the planner tables to a JSON file.
func SaveState(filePath string, state *model.PlannerState) error {
	state.UpdatedAt = time.Now()
	if filePath == "" {
		return nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
