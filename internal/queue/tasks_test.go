package queue

import (
	"encoding/json"
	"testing"
)

func TestNewCartConsistencyScanTask(t *testing.T) {
	task, err := NewCartConsistencyScanTask(CartConsistencyScanPayload{RequestedBy: "alice"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskCartConsistencyScan {
		t.Fatalf("task type want %s got %s", TaskCartConsistencyScan, task.Type())
	}
	var payload CartConsistencyScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.RequestedBy != "alice" {
		t.Fatalf("requested_by lost: %+v", payload)
	}
}
