package cloudfile

import "testing"

func TestParseFileID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare id", "1A2b3C4d5E6f", "1A2b3C4d5E6f"},
		{"bare id padded", "  1A2b3C4d5E6f\n", "1A2b3C4d5E6f"},
		{"view link", "https://host/file/d/1A2b3C4d5E6f/view", "1A2b3C4d5E6f"},
		{"query link", "https://host/open?id=1A2b3C4d5E6f", "1A2b3C4d5E6f"},
		{"second query param", "https://host/open?usp=sharing&id=1A2b3C4d5E6f", "1A2b3C4d5E6f"},
		{"url-encoded link", "https%3A%2F%2Fhost%2Ffile%2Fd%2F1A2b3C4d5E6f%2Fview", "1A2b3C4d5E6f"},
		{"loose fallback", "please open 1A2b3C4d5E6f for me", "1A2b3C4d5E6f"},
		{"too short", "abc123", ""},
		{"not an id", "not an id", ""},
		{"empty", "", ""},
		{"whitespace", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseFileID(tt.in); got != tt.want {
				t.Errorf("ParseFileID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
