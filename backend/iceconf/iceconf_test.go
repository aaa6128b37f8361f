package iceconf

import (
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		rawJSON  string
		turn     [3]string
		wantURLs [][]string
	}{
		{
			name:     "nothing configured falls back to public stun",
			wantURLs: [][]string{{fallbackSTUN}},
		},
		{
			name:    "explicit json list wins",
			rawJSON: `[{"urls":["turn:turn.example.com:3478"],"username":"u","credential":"p"}]`,
			turn:    [3]string{"turn:ignored", "u2", "p2"},
			wantURLs: [][]string{
				{"turn:turn.example.com:3478"},
			},
		},
		{
			name:     "broken json is ignored",
			rawJSON:  `[{"urls":`,
			wantURLs: [][]string{{fallbackSTUN}},
		},
		{
			name: "turn triple plus stun fallback",
			turn: [3]string{"turn:turn.example.com:3478", "user", "pass"},
			wantURLs: [][]string{
				{"turn:turn.example.com:3478"},
				{fallbackSTUN},
			},
		},
		{
			name:     "incomplete turn triple is skipped",
			turn:     [3]string{"turn:turn.example.com:3478", "user", ""},
			wantURLs: [][]string{{fallbackSTUN}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := build(tt.rawJSON, tt.turn[0], tt.turn[1], tt.turn[2])
			if len(got) != len(tt.wantURLs) {
				t.Fatalf("build() returned %d servers, want %d: %+v", len(got), len(tt.wantURLs), got)
			}
			for i, urls := range tt.wantURLs {
				if len(got[i].URLs) != len(urls) || got[i].URLs[0] != urls[0] {
					t.Errorf("server %d URLs = %v, want %v", i, got[i].URLs, urls)
				}
			}
		})
	}
}

func TestBuildTURNCredentials(t *testing.T) {
	got := build("", "turn:t.example.com", "user", "pass")
	if len(got) != 2 {
		t.Fatalf("expected turn + stun, got %+v", got)
	}
	if got[0].Username != "user" || got[0].Credential != "pass" {
		t.Errorf("turn credentials not carried: %+v", got[0])
	}
}
