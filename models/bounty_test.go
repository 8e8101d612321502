package models_test

import (
	"testing"

	"bounty-board-system/models"
)

func TestParseBountyStatus(t *testing.T) {
	tests := []struct {
		in   string
		want models.BountyStatus
		ok   bool
	}{
		{"open", models.BountyStatusOpen, true},
		{"in_progress", models.BountyStatusInProgress, true},
		{"completed", models.BountyStatusCompleted, true},
		{"cancelled", models.BountyStatusCancelled, true},
		{"in-progress", "", false},
		{"OPEN", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := models.ParseBountyStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseBountyStatus(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseCategory(t *testing.T) {
	valid := []string{"need-car", "need-dining-dollars", "need-skills", "physical-effort", "waiting-holding"}
	for _, s := range valid {
		if _, ok := models.ParseCategory(s); !ok {
			t.Errorf("ParseCategory(%q) rejected a valid category", s)
		}
	}
	for _, s := range []string{"carpool", "Need-Car", ""} {
		if _, ok := models.ParseCategory(s); ok {
			t.Errorf("ParseCategory(%q) accepted an invalid category", s)
		}
	}
}

func TestParseDuration(t *testing.T) {
	for _, s := range []string{"quick", "short", "medium", "long"} {
		if _, ok := models.ParseDuration(s); !ok {
			t.Errorf("ParseDuration(%q) rejected a valid duration", s)
		}
	}
	if _, ok := models.ParseDuration("eternal"); ok {
		t.Errorf("ParseDuration accepted an invalid duration")
	}
}

func TestIsTerminal(t *testing.T) {
	if models.BountyStatusOpen.IsTerminal() || models.BountyStatusInProgress.IsTerminal() {
		t.Errorf("open/in_progress must not be terminal")
	}
	if !models.BountyStatusCompleted.IsTerminal() || !models.BountyStatusCancelled.IsTerminal() {
		t.Errorf("completed/cancelled must be terminal")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.BountyStatus
		want     bool
	}{
		{models.BountyStatusOpen, models.BountyStatusInProgress, true},
		{models.BountyStatusOpen, models.BountyStatusCancelled, true},
		{models.BountyStatusOpen, models.BountyStatusCompleted, true},
		{models.BountyStatusInProgress, models.BountyStatusCompleted, true},
		{models.BountyStatusInProgress, models.BountyStatusCancelled, true},
		{models.BountyStatusInProgress, models.BountyStatusOpen, true},
		{models.BountyStatusOpen, models.BountyStatusOpen, false},
		{models.BountyStatusCompleted, models.BountyStatusOpen, false},
		{models.BountyStatusCompleted, models.BountyStatusCancelled, false},
		{models.BountyStatusCancelled, models.BountyStatusOpen, false},
		{models.BountyStatusCancelled, models.BountyStatusInProgress, false},
	}
	for _, tt := range tests {
		if got := models.CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
