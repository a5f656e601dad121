package domain

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"pendente", StatusPending, false},
		{" in_progress ", StatusInProgress, false},
		{"em andamento", StatusInProgress, false},
		{"Em_Andamento", StatusInProgress, false},
		{"completed", StatusCompleted, false},
		{"concluida", StatusCompleted, false},
		{"concluída", StatusCompleted, false},
		{"archived", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDiffState) {
					t.Fatalf("expected ErrInvalidDiffState, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestStatus_UnmarshalJSON(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"id":"t1","creator":"u1","status":"em andamento"}`), &task); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if task.Status != StatusInProgress {
		t.Errorf("expected in_progress, got %s", task.Status)
	}

	err := json.Unmarshal([]byte(`{"id":"t1","creator":"u1","status":"done"}`), &task)
	if !errors.Is(err, ErrInvalidDiffState) {
		t.Errorf("expected ErrInvalidDiffState, got %v", err)
	}
}

func TestTask_Participants(t *testing.T) {
	task := Task{Creator: "u1", Collaborators: []string{"u2", "u1", " ", "u3", "u2"}}
	want := []string{"u1", "u2", "u3"}
	if got := task.Participants(); !reflect.DeepEqual(got, want) {
		t.Errorf("Participants() = %v, want %v", got, want)
	}
	if !task.HasParticipant("u3") || task.HasParticipant("u4") {
		t.Error("HasParticipant returned wrong result")
	}
}

func TestTask_CompletionDuration(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	done := created.Add(90 * time.Minute)
	early := created.Add(-time.Minute)

	tests := []struct {
		name   string
		task   Task
		wantMs int64
		wantOK bool
	}{
		{"not completed", Task{CreatedAt: created}, 0, false},
		{"normal", Task{CreatedAt: created, CompletedAt: &done}, 90 * 60 * 1000, true},
		{"clock skew clamps to zero", Task{CreatedAt: created, CompletedAt: &early}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms, ok := tt.task.CompletionDuration()
			if ms != tt.wantMs || ok != tt.wantOK {
				t.Errorf("CompletionDuration() = (%d, %v), want (%d, %v)", ms, ok, tt.wantMs, tt.wantOK)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" y", "x", "", "  ", "x ", "X"})
	want := []string{"X", "x", "y"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTags() = %v, want %v", got, want)
	}
	if got := NormalizeTags(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestParseLifecycleEvent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    EventKind
		wantErr bool
	}{
		{
			name:  "created with task field",
			input: `{"kind":"created","task":{"id":"t1","creator":"u1","status":"pending"}}`,
			kind:  EventCreated,
		},
		{
			name:  "updated",
			input: `{"kind":"updated","before":{"id":"t1","creator":"u1","status":"pending"},"after":{"id":"t1","creator":"u1","status":"completed"}}`,
			kind:  EventUpdated,
		},
		{
			name:  "deleted with task field",
			input: `{"kind":"deleted","task":{"id":"t1","creator":"u1","status":"concluida"}}`,
			kind:  EventDeleted,
		},
		{
			name:    "updated without before",
			input:   `{"kind":"updated","after":{"id":"t1","creator":"u1","status":"pending"}}`,
			wantErr: true,
		},
		{
			name:    "missing creator",
			input:   `{"kind":"created","task":{"id":"t1","status":"pending"}}`,
			wantErr: true,
		},
		{
			name:    "unknown kind",
			input:   `{"kind":"archived","task":{"id":"t1","creator":"u1","status":"pending"}}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseLifecycleEvent([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDiffState) {
					t.Fatalf("expected ErrInvalidDiffState, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", ev.Kind, tt.kind)
			}
			if ev.TaskID() != "t1" {
				t.Errorf("TaskID() = %q, want t1", ev.TaskID())
			}
		})
	}
}

func TestPartialApplyError(t *testing.T) {
	cause := errors.New("boom")
	err := &PartialApplyError{
		EventID: "ev-1",
		Kind:    EventUpdated,
		Applied: 1,
		Failed: []OpError{
			{Op: Op{Kind: OpIncr, Key: StatusKey("u1", StatusCompleted), Delta: 1}, Err: cause},
		},
	}

	if !errors.Is(err, cause) {
		t.Error("expected PartialApplyError to unwrap to the op cause")
	}
	want := "partial apply of updated event ev-1: 1 applied, 1 failed [user:u1:tasks:status:completed]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
