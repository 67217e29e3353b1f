package usecase

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/songlens/enricher/internal/logging"
	"go.uber.org/zap"
)

// DefaultNoiseTokens are download-site markers found in ripped filenames
var DefaultNoiseTokens = []string{"spotdown.org", "spotdown", ".org"}

// Compiled regex patterns for filename cleaning
var (
	// A trailing ".xxx" of 1-5 alphanumerics, so "Mr. Brightside" keeps its dot.
	// stripExtension also requires a letter, so "Symphony No.5" keeps its number.
	extensionPattern = regexp.MustCompile(`\.([A-Za-z0-9]{1,5})$`)

	// Annotations like "(Live)" or "(remix)", non-greedy
	parentheticalPattern = regexp.MustCompile(`\(.*?\)`)

	trailingDashPattern = regexp.MustCompile(`-\s*$`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// FilenameNormalizer turns a raw audio filename into a title guess
type FilenameNormalizer struct {
	noisePatterns []*regexp.Regexp
	logger        *zap.Logger
}

// NewFilenameNormalizer creates a normalizer that strips noiseTokens
// case-insensitively, in the order given
func NewFilenameNormalizer(noiseTokens []string, logger *zap.Logger) *FilenameNormalizer {
	patterns := make([]*regexp.Regexp, 0, len(noiseTokens))
	for _, token := range noiseTokens {
		if token == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(token)))
	}

	return &FilenameNormalizer{
		noisePatterns: patterns,
		logger:        logging.OrNop(logger).Named("normalizer"),
	}
}

// Normalize cleans rawFilename into a title guess. An empty result means
// nothing usable was left.
func (n *FilenameNormalizer) Normalize(rawFilename string) string {
	// Step 1: drop the extension
	name := stripExtension(rawFilename)

	// Step 2: remove site markers
	for _, pattern := range n.noisePatterns {
		name = pattern.ReplaceAllString(name, "")
	}

	// Step 3: remove bracketed annotations
	name = parentheticalPattern.ReplaceAllString(name, "")

	// Step 4: remove a dangling dash
	name = trailingDashPattern.ReplaceAllString(name, "")

	// Step 5: underscores are word separators
	name = strings.ReplaceAll(name, "_", " ")

	// Step 6: normalize whitespace
	name = strings.TrimSpace(multiSpacePattern.ReplaceAllString(name, " "))

	n.logger.Debug("normalized filename", zap.String("input", rawFilename), zap.String("title", name))

	return name
}

func stripExtension(name string) string {
	loc := extensionPattern.FindStringSubmatchIndex(name)
	if loc == nil {
		return name
	}
	ext := name[loc[2]:loc[3]]
	if strings.IndexFunc(ext, unicode.IsLetter) < 0 {
		return name
	}
	return name[:loc[0]]
}
