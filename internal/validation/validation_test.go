package validation

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	baseDir := "/tmp/corpus"

	tests := []struct {
		name      string
		userPath  string
		want      string
		wantError error
	}{
		{name: "simple entry", userPath: "00101.xml", want: "00101.xml"},
		{name: "nested entry", userPath: "documents/00101.xml", want: filepath.Join("documents", "00101.xml")},
		{name: "redundant separators", userPath: "documents//00101.xml", want: filepath.Join("documents", "00101.xml")},
		{name: "dot component", userPath: "./00101.xml", want: "00101.xml"},
		{name: "inner dotdot staying inside", userPath: "a/../00101.xml", want: "00101.xml"},
		{name: "dotdot in a name", userPath: "a..b.xml", want: "a..b.xml"},
		{name: "traversal", userPath: "../etc/passwd", wantError: ErrPathTraversal},
		{name: "traversal in middle", userPath: "a/../../etc/passwd", wantError: ErrPathTraversal},
		{name: "absolute", userPath: "/etc/passwd", wantError: ErrPathTraversal},
		{name: "empty", userPath: "", wantError: ErrEmptyPath},
		{name: "null byte", userPath: "a\x00.xml", wantError: ErrInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(baseDir, tt.userPath)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("SanitizePath() error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizePath() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SanitizePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantError error
	}{
		{name: "relative", path: "out/corpus.json.xz"},
		{name: "stdio", path: "-"},
		{name: "unicode", path: "korpus/Łódź.json"},
		{name: "empty", path: "", wantError: ErrEmptyPath},
		{name: "too long", path: strings.Repeat("a", MaxPathLength+1), wantError: ErrPathTooLong},
		{name: "control character", path: "a\nb", wantError: ErrInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if !errors.Is(err, tt.wantError) {
				t.Errorf("ValidatePath(%q) error = %v, want %v", tt.path, err, tt.wantError)
			}
		})
	}
}
