package extractor

import "testing"

func TestSplit(t *testing.T) {
	tests := []struct {
		raw  string
		want parts
		ok   bool
	}{
		{"http://example.com/a/b.php?x=1#f", parts{scheme: "http", netloc: "example.com", path: "/a/b.php", query: "x=1", fragment: "f"}, true},
		{"HTTPS://Example.com", parts{scheme: "https", netloc: "Example.com"}, true},
		{"example.com/a", parts{path: "example.com/a"}, true},
		{"//cdn.example.com/x.js", parts{netloc: "cdn.example.com", path: "/x.js"}, true},
		{"http://h/a;p/b;q=1", parts{scheme: "http", netloc: "h", path: "/a;p/b", params: "q=1"}, true},
		{"mailto:a@b.c", parts{scheme: "mailto", path: "a@b.c"}, true},
		{"http://h/%zz/%", parts{scheme: "http", netloc: "h", path: "/%zz/%"}, true},
		{"  \thttp://h/a\nb", parts{scheme: "http", netloc: "h", path: "/ab"}, true},
		{"http://[::1]:8080/x", parts{scheme: "http", netloc: "[::1]:8080", path: "/x"}, true},
		{"http://[::1/x", parts{}, false},
		{"http://::1]/x", parts{}, false},
		{"http://[127.0.0.1]/x", parts{}, false},
		{"http://[vff.anything]/", parts{scheme: "http", netloc: "[vff.anything]", path: "/"}, true},
		{"1http://x", parts{path: "1http://x"}, true},
		{"", parts{}, true},
	}

	for _, tt := range tests {
		got, ok := split(tt.raw)
		if ok != tt.ok {
			t.Errorf("split(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if got != tt.want {
			t.Errorf("split(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}
