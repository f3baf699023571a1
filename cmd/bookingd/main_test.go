package main

import "testing"

func TestRandomHex(t *testing.T) {
	token := randomHex(32)
	if len(token) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(token))
	}
	if token == randomHex(32) {
		t.Fatal("expected successive tokens to differ")
	}
}

func TestRandomHexNonPositiveSize(t *testing.T) {
	if got := len(randomHex(0)); got != 32 {
		t.Fatalf("expected fallback size of 32 hex characters, got %d", got)
	}
}

func TestDefaultRooms(t *testing.T) {
	rooms := defaultRooms()
	if len(rooms) == 0 {
		t.Fatal("expected at least one seeded room")
	}
	for _, room := range rooms {
		if room.Name == "" {
			t.Error("seeded room is missing a name")
		}
		if room.Capacity <= 0 {
			t.Errorf("seeded room %q has non-positive capacity", room.Name)
		}
	}
}

func TestDefaultTeams(t *testing.T) {
	teams := defaultTeams()
	if len(teams) == 0 {
		t.Fatal("expected at least one seeded team")
	}
	seen := make(map[string]bool, len(teams))
	for _, team := range teams {
		if team.Name == "" {
			t.Error("seeded team is missing a name")
		}
		if seen[team.Name] {
			t.Errorf("seeded team %q appears twice", team.Name)
		}
		seen[team.Name] = true
	}
}
