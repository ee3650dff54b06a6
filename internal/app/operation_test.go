package app

import (
	"errors"
	"testing"
	"time"
)

func TestNewCommandOperation(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		parameters []string
		wantDetail string
	}{
		{
			name:       "with parameters",
			operation:  "canvas add",
			parameters: []string{"Reading"},
			wantDetail: "success Reading",
		},
		{
			name:       "empty parameters",
			operation:  "backup",
			wantDetail: "success",
		},
	}

	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewCommandOperation(tt.operation, tt.parameters...)

			if op.Name != tt.operation {
				t.Errorf("Name = %q, want %q", op.Name, tt.operation)
			}
			if op.Status != "success" {
				t.Errorf("Status = %q, want %q", op.Status, "success")
			}

			rec := op.Record(now)
			if rec.Operation != "Command:"+tt.operation {
				t.Errorf("Record().Operation = %q, want %q", rec.Operation, "Command:"+tt.operation)
			}
			if rec.Detail != tt.wantDetail {
				t.Errorf("Record().Detail = %q, want %q", rec.Detail, tt.wantDetail)
			}
			if !rec.CreatedAt.Equal(now) {
				t.Errorf("Record().CreatedAt = %v, want %v", rec.CreatedAt, now)
			}
		})
	}
}

func TestCommandOperation_Fail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error keeps success", err: nil, want: "success"},
		{name: "error marks failure", err: errors.New("boom"), want: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewCommandOperation("item add")
			op.Fail(tt.err)
			if op.Status != tt.want {
				t.Errorf("Status = %q, want %q", op.Status, tt.want)
			}
		})
	}
}
