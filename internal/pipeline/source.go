package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// maxLineSize bounds a single URL line.
const maxLineSize = 1 << 20

// ReadURLs reads one URL per line from r. The input may be UTF-8 with or
// without a byte order mark, or UTF-16 with one. Blank lines and lines
// starting with '#' are skipped; surrounding whitespace is trimmed.
func ReadURLs(r io.Reader) ([]string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	sc := bufio.NewScanner(transform.NewReader(r, dec))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var urls []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: reading urls: %w", err)
	}
	return urls, nil
}
