package extractor

import "testing"

func TestHostOf(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"http://example.com/a", "example.com"},
		{"https://user:pw@login.example.com:8443/x?y#z", "login.example.com"},
		{"example.com", "example.com"},
		{"example.com/path", "example.com"},
		{"//cdn.example.com/x", "cdn.example.com"},
		{"http://[2001:db8::1]:80/", "[2001:db8::1]"},
		{"http://example.com./", "example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := hostOf(tt.raw); got != tt.want {
			t.Errorf("hostOf(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestRegistrableLabel(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"www.example.co.uk", "example"},
		{"example.com", "example"},
		{"a.b.c.example.com", "example"},
		{"foo.blogspot.com", "blogspot"},
		{"localhost", "localhost"},
		{"intranet.corp", "corp"},
		{"co.uk", ""},
		{"com", ""},
		{"192.0.2.7", "192.0.2.7"},
		{"[2001:db8::1]", "[2001:db8::1]"},
		{"例え.jp", "例え"},
		{"www.example。com", "example"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := registrableLabel(tt.host); got != tt.want {
			t.Errorf("registrableLabel(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
