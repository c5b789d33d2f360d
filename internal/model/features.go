package model

// FeatureSet maps a feature name to its numeric value. A FeatureSet produced
// by the extractor holds every name in Vocabulary.
type FeatureSet map[string]float64

// Clone returns an independent copy of the set.
func (fs FeatureSet) Clone() FeatureSet {
	out := make(FeatureSet, len(fs))
	for k, v := range fs {
		out[k] = v
	}
	return out
}

// Feature names understood by the extractor.
const (
	LengthURL            = "length_url"
	DirectoryLength      = "directory_length"
	QtySlashDirectory    = "qty_slash_directory"
	QtyDotFile           = "qty_dot_file"
	DomainLength         = "domain_length"
	QtyDotDirectory      = "qty_dot_directory"
	QtyHyphenDirectory   = "qty_hyphen_directory"
	QtyAtDirectory       = "qty_at_directory"
	QtyAndDirectory      = "qty_and_directory"
	QtyCommaDirectory    = "qty_comma_directory"
	QtyPercentDirectory  = "qty_percent_directory"
	QtyDollarDirectory   = "qty_dollar_directory"
	QtyDollarFile        = "qty_dollar_file"
	QtySlashURL          = "qty_slash_url"
	TimeResponse         = "time_response"
	ASNIP                = "asn_ip"
	TTLHostname          = "ttl_hostname"
	TimeDomainActivation = "time_domain_activation"
	TimeDomainExpiration = "time_domain_expiration"
	FileLength           = "file_length"
)

// Sentinel marks a feature that could not be computed. It is distinct from a
// measured zero.
const Sentinel = -1

// Vocabulary is the closed set of feature names. Its order carries no meaning:
// column order comes from the scaler artifact's schema.
var Vocabulary = []string{
	LengthURL,
	DirectoryLength,
	QtySlashDirectory,
	QtyDotFile,
	DomainLength,
	QtyDotDirectory,
	QtyHyphenDirectory,
	QtyAtDirectory,
	QtyAndDirectory,
	QtyCommaDirectory,
	QtyPercentDirectory,
	QtyDollarDirectory,
	QtyDollarFile,
	QtySlashURL,
	TimeResponse,
	ASNIP,
	TTLHostname,
	TimeDomainActivation,
	TimeDomainExpiration,
	FileLength,
}

// InVocabulary reports whether name is a known feature.
func InVocabulary(name string) bool {
	for _, v := range Vocabulary {
		if v == name {
			return true
		}
	}
	return false
}
