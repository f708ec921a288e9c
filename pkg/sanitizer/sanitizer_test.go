package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims", "  Ivanov  ", "Ivanov"},
		{"collapses inner spaces", "Anna   Maria", "Anna Maria"},
		{"tabs and newlines", "Anna\t\nMaria", "Anna Maria"},
		{"zero width chars", "Pe\u200btrov", "Petrov"},
		{"cyrillic untouched", "Иванова", "Иванова"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeName(got); again != got {
				t.Errorf("NormalizeName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Guest@Resort.TEST "); got != "guest@resort.test" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("  late   check-in \r\n\r\n  two  kids  \n\n")
	want := "late check-in\n\ntwo kids"
	if got != want {
		t.Errorf("NormalizeText() = %q, want %q", got, want)
	}
}

func TestSanitizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"adds https", "cdn.resort.test/rooms/A1.jpg", "https://cdn.resort.test/rooms/A1.jpg"},
		{"upgrades http", "http://CDN.resort.test/rooms/A1.jpg", "https://cdn.resort.test/rooms/A1.jpg"},
		{"drops utm params", "https://cdn.resort.test/a.jpg?utm_source=x&v=2", "https://cdn.resort.test/a.jpg?v=2"},
		{"drops trailing slash", "https://cdn.resort.test/gallery/", "https://cdn.resort.test/gallery"},
		{"empty", "  ", ""},
		{"no host", "https://", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeURL(tt.input); got != tt.want {
				t.Errorf("SanitizeURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeSlice(t *testing.T) {
	got := SanitizeSlice([]string{" https://a.test/1.jpg", "a.test/1.jpg", "", "https://a.test/2.jpg"}, SanitizeURL)
	want := []string{"https://a.test/1.jpg", "https://a.test/2.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeSlice() = %v, want %v", got, want)
	}

	if got := SanitizeSlice(nil, NormalizeLabel); got == nil || len(got) != 0 {
		t.Errorf("SanitizeSlice(nil) = %#v, want empty non-nil slice", got)
	}
}
