package user

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStatusWireNames(t *testing.T) {
	for _, st := range Statuses() {
		b, err := json.Marshal(st)
		if err != nil {
			t.Fatalf("marshal %v: %v", st, err)
		}

		var back Status
		if err := json.Unmarshal(b, &back); err != nil || back != st {
			t.Fatalf("%s did not survive JSON: %s, %v", st, b, err)
		}
	}

	if _, err := json.Marshal(Status(0)); err == nil {
		t.Fatal("zero status must not marshal")
	}
}

func TestUserJSONHidesPassword(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b, err := json.Marshal(User{
		ID:           "1",
		Email:        "user1@example.com",
		Name:         "User 1",
		Status:       StatusActive,
		PasswordHash: "secret",
		CreatedAt:    ts,
		UpdatedAt:    ts,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"id":"1","email":"user1@example.com","name":"User 1","status":"active","created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-01T00:00:00Z"}`
	if string(b) != want {
		t.Fatalf("got  %s\nwant %s", b, want)
	}
}

func TestFilterMatches(t *testing.T) {
	u := User{Email: "Ada@Example.com", Name: "Ada Lovelace", Status: StatusActive}
	inactive := StatusInactive

	tests := []struct {
		filter Filter
		want   bool
	}{
		{Filter{}, true},
		{Filter{Search: "love"}, true},
		{Filter{Search: "EXAMPLE"}, true},
		{Filter{Search: "grace"}, false},
		{Filter{Status: &inactive}, false},
	}

	for _, tt := range tests {
		if got := tt.filter.Matches(u); got != tt.want {
			t.Errorf("%+v.Matches = %v, want %v", tt.filter, got, tt.want)
		}
	}
}

func TestApplyMergesPresentFields(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	u := User{ID: "7", Email: "a@example.com", Name: "A", Status: StatusActive, CreatedAt: created, UpdatedAt: created}

	name := "B"
	suspended := StatusSuspended
	later := created.Add(time.Hour)

	got := u.Apply(Patch{Name: &name, Status: &suspended, UpdatedAt: later})

	if got.ID != "7" || got.Email != "a@example.com" {
		t.Errorf("untouched fields changed: %+v", got)
	}
	if got.Name != "B" || got.Status != StatusSuspended {
		t.Errorf("patch not applied: %+v", got)
	}
	if !got.UpdatedAt.Equal(later) || !got.CreatedAt.Equal(created) {
		t.Errorf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestApplyNeverMovesUpdatedAtBackwards(t *testing.T) {
	updated := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	u := User{CreatedAt: updated.Add(-time.Hour), UpdatedAt: updated}

	got := u.Apply(Patch{UpdatedAt: updated.Add(-24 * time.Hour)})
	if !got.UpdatedAt.Equal(updated) {
		t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, updated)
	}
}
