package extractor

import (
	"net"
	"strings"
)

// parts is the generic-syntax decomposition of a URL string. Components are
// kept exactly as written: nothing is percent-decoded.
type parts struct {
	scheme   string
	netloc   string
	path     string
	params   string
	query    string
	fragment string
}

// paramSchemes carry ";params" on the last path segment.
var paramSchemes = map[string]bool{
	"": true, "ftp": true, "hdl": true, "prospero": true, "http": true,
	"imap": true, "https": true, "shttp": true, "rtsp": true, "rtsps": true,
	"rtspu": true, "sip": true, "sips": true, "mms": true, "sftp": true, "tel": true,
}

// split decomposes raw without rejecting malformed escapes or hosts. The only
// failure is an unbalanced or invalid IPv6 bracket in the netloc, reported
// with ok=false.
func split(raw string) (p parts, ok bool) {
	s := strings.Map(func(r rune) rune {
		if r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, raw)
	s = strings.TrimLeftFunc(s, func(r rune) bool { return r <= ' ' })

	if i := strings.IndexByte(s, ':'); i > 0 && isASCIILetter(s[0]) && allSchemeChars(s[:i]) {
		p.scheme = strings.ToLower(s[:i])
		s = s[i+1:]
	}

	if strings.HasPrefix(s, "//") {
		end := len(s)
		for _, c := range "/?#" {
			if j := strings.IndexRune(s[2:], c); j >= 0 && j+2 < end {
				end = j + 2
			}
		}
		p.netloc, s = s[2:end], s[end:]
		if !validBrackets(p.netloc) {
			return parts{}, false
		}
	}

	if i := strings.IndexByte(s, '#'); i >= 0 {
		s, p.fragment = s[:i], s[i+1:]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s, p.query = s[:i], s[i+1:]
	}
	if paramSchemes[p.scheme] && strings.Contains(s, ";") {
		s, p.params = splitParams(s)
	}
	p.path = s
	return p, true
}

// splitParams separates ";params" from the last path segment.
func splitParams(s string) (string, string) {
	var i int
	if slash := strings.LastIndexByte(s, '/'); slash >= 0 {
		j := strings.IndexByte(s[slash:], ';')
		if j < 0 {
			return s, ""
		}
		i = slash + j
	} else {
		i = strings.IndexByte(s, ';')
	}
	return s[:i], s[i+1:]
}

func validBrackets(netloc string) bool {
	open := strings.Contains(netloc, "[")
	closed := strings.Contains(netloc, "]")
	if open != closed {
		return false
	}
	if !open {
		return true
	}
	host := netloc[strings.IndexByte(netloc, '[')+1:]
	end := strings.IndexByte(host, ']')
	if end < 0 {
		return false
	}
	host = host[:end]
	if strings.HasPrefix(host, "v") || strings.HasPrefix(host, "V") {
		return true // IPvFuture
	}
	if i := strings.IndexByte(host, '%'); i >= 0 {
		host = host[:i] // zone id
	}
	ip := net.ParseIP(host)
	return ip != nil && strings.Contains(host, ":")
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func allSchemeChars(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isASCIILetter(c) || ('0' <= c && c <= '9') || c == '+' || c == '-' || c == '.' {
			continue
		}
		return false
	}
	return true
}
