package utils

import "testing"

func TestSiteOf(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "www host", input: "https://www.youtube.com/watch?v=x", expected: "youtube.com"},
		{name: "mobile host", input: "https://m.youtube.com/", expected: "youtube.com"},
		{name: "uppercase with dot", input: "https://WWW.YouTube.com./", expected: "youtube.com"},
		{name: "multi-part suffix", input: "https://www.youtube.co.uk/", expected: "youtube.co.uk"},
		{name: "localhost", input: "http://localhost:8080/", expected: "localhost"},
		{name: "no host", input: "/watch", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SiteOf(tt.input); got != tt.expected {
				t.Errorf("SiteOf(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
