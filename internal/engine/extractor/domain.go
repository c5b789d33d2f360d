package extractor

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// labelDots are the separators treated as '.' when splitting a host into
// labels (ASCII full stop plus the ideographic and full-width variants).
var labelDots = strings.NewReplacer("。", ".", "．", ".", "｡", ".")

// hostOf extracts the host from raw without relying on a URL parser: it
// drops an optional "scheme://" prefix, the path, query, fragment, userinfo
// and port. Bracketed IPv6 literals are returned with their brackets.
func hostOf(raw string) string {
	s := schemeless(raw)
	for _, sep := range []string{"/", "?", "#"} {
		if i := strings.Index(s, sep); i >= 0 {
			s = s[:i]
		}
	}
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		s = s[i+1:]
	}
	if strings.HasPrefix(s, "[") {
		if i := strings.IndexByte(s, ']'); i >= 0 {
			return s[:i+1]
		}
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, ".。．｡")
}

func schemeless(raw string) string {
	i := strings.Index(raw, "//")
	if i == 0 {
		return raw[2:]
	}
	if i < 2 || raw[i-1] != ':' || !allSchemeChars(raw[:i-1]) {
		return raw
	}
	return raw[i+2:]
}

// registrableLabel returns the label immediately left of the host's ICANN
// public suffix ("example" for "www.example.co.uk"). IP literals are returned
// whole; hosts without a known suffix yield their last label; a host that is
// itself a public suffix yields "".
func registrableLabel(host string) string {
	if host == "" {
		return ""
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host
	}
	if net.ParseIP(host) != nil {
		return host
	}

	labels := strings.Split(labelDots.Replace(host), ".")
	n := suffixLabels(labels)
	if n >= len(labels) {
		return ""
	}
	return labels[len(labels)-n-1]
}

// suffixLabels counts how many trailing labels form the ICANN public suffix.
// Private-section suffixes (e.g. blogspot.com) are ignored.
func suffixLabels(labels []string) int {
	lookup := strings.ToLower(strings.Join(labels, "."))
	if ascii, err := idna.Lookup.ToASCII(lookup); err == nil && strings.Count(ascii, ".") == strings.Count(lookup, ".") {
		lookup = ascii
	}

	suffix, icann := publicsuffix.PublicSuffix(lookup)
	for !icann {
		i := strings.IndexByte(suffix, '.')
		if i < 0 {
			return 0
		}
		suffix, icann = publicsuffix.PublicSuffix(suffix[i+1:])
	}
	return strings.Count(suffix, ".") + 1
}
