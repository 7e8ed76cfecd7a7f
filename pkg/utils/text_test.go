package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("calçados", 4); got != "calç..." {
		t.Errorf("multibyte truncate: got %s", got)
	}
}

func TestUpperFirst(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"guitarra", "Guitarra"},
		{"drone DJI", "Drone DJI"},
		{"ébano", "Ébano"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := UpperFirst(tt.in); got != tt.want {
			t.Errorf("UpperFirst(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"guitarra", "Guitarra"},
		{"drone DJI", "Drone dji"},
		{"LIVRO", "Livro"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Capitalize(tt.in); got != tt.want {
			t.Errorf("Capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
