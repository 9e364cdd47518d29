package queue

import (
	"encoding/json"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartConsistencyScan periodic ghost pass over active carts
	TaskCartConsistencyScan = constants.TaskCartConsistencyScan
)

// CartConsistencyScanPayload consistency scan task payload
type CartConsistencyScanPayload struct {
	RequestedBy string `json:"requested_by"`
}

// NewCartConsistencyScanTask creates a consistency scan task
func NewCartConsistencyScanTask(payload CartConsistencyScanPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartConsistencyScan, body), nil
}
