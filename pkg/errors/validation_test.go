package errors

import (
	"strings"
	"testing"
)

func TestValidateHandle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"bsky handle", "alice.bsky.social", false},
		{"custom domain", "flo-bit.dev", false},
		{"did plc", "did:plc:z72i7hdynmk6r22z27h6tvur", false},
		{"did web", "did:web:example.com", false},

		{"empty", "", true},
		{"single label", "alice", true},
		{"path traversal", "../etc/passwd", true},
		{"slash", "alice/bsky.social", true},
		{"control char", "alice\x01.bsky.social", true},
		{"bad did method", "did:key:abc", true},
		{"too long", strings.Repeat("a.", 130) + "com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHandle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHandle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidHandle) {
				t.Errorf("ValidateHandle(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidHandle)
			}
		})
	}
}

func TestValidatePage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"self", "blento.self", false},
		{"named", "blento.links", false},
		{"with dash", "blento.my-page", false},

		{"empty", "", true},
		{"no prefix", "self", true},
		{"uppercase", "blento.Self", true},
		{"nested", "blento.a.b", true},
		{"traversal", "blento.../x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePage(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePage(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateItemID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"tid", "3lbqz4xk2yc2a", false},
		{"uuid", "0190b4a3-6f4e-7c2a-9b1d-4f3e2a1b0c9d", false},

		{"empty", "", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"traversal", "..", true},
		{"space", "a b", false},
		{"newline", "a\nb", true},
		{"non ascii", "kärtchen", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateItemID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "pages/alice.json", false},
		{"absolute", "/tmp/page.json", false},

		{"empty", "", true},
		{"traversal", "../secret.json", true},
		{"null byte", "a\x00b", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
