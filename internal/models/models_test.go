package models

import "testing"

func TestFinishedStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []IngestStatus
		want     JobStatus
	}{
		{"no files", nil, JobCompleted},
		{"all ingested", []IngestStatus{IngestInserted, IngestInserted}, JobCompleted},
		{"only duplicates", []IngestStatus{IngestDuplicate}, JobCompleted},
		{"some failed", []IngestStatus{IngestFailed, IngestInserted}, JobCompleted},
		{"all failed", []IngestStatus{IngestFailed, IngestFailed}, JobFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]IngestResult, len(tt.statuses))
			for i, s := range tt.statuses {
				results[i] = IngestResult{Status: s}
			}
			if got := FinishedStatus(results); got != tt.want {
				t.Errorf("FinishedStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}
