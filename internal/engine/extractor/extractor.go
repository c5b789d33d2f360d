// Package extractor derives the lexical, structural and network features of
// a URL string.
package extractor

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/crimson-sun/phishlens/internal/engine/probe"
	"github.com/crimson-sun/phishlens/internal/model"
)

// fileSuffix matches a trailing ".ext" on the last path segment.
var fileSuffix = regexp.MustCompile(`\.[^./]+$`)

// Extractor turns a URL string into a complete FeatureSet.
type Extractor struct {
	prober probe.Prober
	logger *slog.Logger
}

// New creates an Extractor. A nil prober gets a default HTTP prober with a
// 5 second timeout; a nil logger uses slog.Default().
func New(p probe.Prober, logger *slog.Logger) *Extractor {
	if p == nil {
		p = probe.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{prober: p, logger: logger}
}

// Extract computes every feature in model.Vocabulary for raw. It never fails:
// a URL that cannot be split yields zero path features, and a failed probe
// yields sentinel network features. Exactly one probe is made per call.
func (e *Extractor) Extract(ctx context.Context, raw string) model.FeatureSet {
	fs := Lexical(raw)

	res := e.prober.Probe(ctx, raw)
	if res.OK {
		fs[model.TimeResponse] = res.Seconds()
		// ASN and TTL are placeholders; no lookup is performed.
		fs[model.ASNIP] = 0
		fs[model.TTLHostname] = 0
	} else {
		e.logger.Debug("probe failed", "url", raw, "err", res.Err)
		fs[model.TimeResponse] = model.Sentinel
		fs[model.ASNIP] = model.Sentinel
		fs[model.TTLHostname] = model.Sentinel
	}
	return fs
}

// Lexical computes the deterministic, network-free part of the feature set.
// Network features are left at their failure sentinels.
func Lexical(raw string) model.FeatureSet {
	fs := make(model.FeatureSet, len(model.Vocabulary))

	fs[model.LengthURL] = float64(utf8.RuneCountInString(raw))
	fs[model.QtySlashURL] = float64(strings.Count(raw, "/"))
	fs[model.DomainLength] = float64(utf8.RuneCountInString(registrableLabel(hostOf(raw))))

	var path string
	if p, ok := split(raw); ok {
		path = p.path
	}
	fs[model.DirectoryLength] = float64(utf8.RuneCountInString(path))
	fs[model.QtySlashDirectory] = float64(strings.Count(path, "/"))
	fs[model.QtyDotDirectory] = float64(strings.Count(path, "."))
	fs[model.QtyHyphenDirectory] = float64(strings.Count(path, "-"))
	fs[model.QtyAtDirectory] = float64(strings.Count(path, "@"))
	fs[model.QtyAndDirectory] = float64(strings.Count(path, "&"))
	fs[model.QtyCommaDirectory] = float64(strings.Count(path, ","))
	fs[model.QtyPercentDirectory] = float64(strings.Count(path, "%"))
	fs[model.QtyDollarDirectory] = float64(strings.Count(path, "$"))

	fs[model.QtyDotFile] = 0
	fs[model.QtyDollarFile] = 0
	if fileSuffix.MatchString(path) {
		fs[model.QtyDotFile] = 1
		file := path[strings.LastIndexByte(path, '/')+1:]
		fs[model.QtyDollarFile] = float64(strings.Count(file, "$"))
	}

	fs[model.TimeResponse] = model.Sentinel
	fs[model.ASNIP] = model.Sentinel
	fs[model.TTLHostname] = model.Sentinel

	// Registration data and target-file length are never looked up.
	fs[model.TimeDomainActivation] = model.Sentinel
	fs[model.TimeDomainExpiration] = model.Sentinel
	fs[model.FileLength] = 0

	return fs
}
