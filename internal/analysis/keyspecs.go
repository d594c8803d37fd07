package analysis

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxKeySpecs        = 8
	maxFeatureWords    = 6
	maxDetailChars     = 200
	detailClipChars    = 197
	detailClipEllipsis = "…"
)

var (
	commaColonRe    = regexp.MustCompile(`,\s*:`)
	multiSpaceRe    = regexp.MustCompile(`\s{2,}`)
	sentenceSplitRe = regexp.MustCompile(`[.?!]\s*`)
)

// deriveKeySpecs heuristically mines feature/detail pairs from a product
// description. It never fails: unstructured or empty descriptions yield an
// empty list.
func deriveKeySpecs(description string) []KeySpec {
	if strings.TrimSpace(description) == "" {
		return []KeySpec{}
	}

	normalized := strings.ReplaceAll(description, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = strings.ReplaceAll(normalized, "[", "\n")
	normalized = strings.ReplaceAll(normalized, "]", "\n")
	normalized = commaColonRe.ReplaceAllString(normalized, ":")
	normalized = multiSpaceRe.ReplaceAllString(normalized, " ")

	specs := make([]KeySpec, 0, maxKeySpecs)
	seen := make(map[string]struct{})

	for _, segment := range splitSpecSegments(normalized) {
		candidate := strings.TrimSpace(segment)
		if candidate == "" {
			continue
		}

		if !strings.Contains(candidate, ":") && strings.Contains(candidate, " - ") {
			candidate = strings.Replace(candidate, " - ", ": ", 1)
		}
		featurePart, detailPart, ok := strings.Cut(candidate, ":")
		if !ok {
			continue
		}

		feature := strings.TrimSpace(strings.Trim(featurePart, " •-.,;"))
		if strings.Contains(feature, ".") {
			parts := sentenceSplitRe.Split(feature, -1)
			feature = strings.TrimSpace(parts[len(parts)-1])
		}
		detail := strings.TrimSpace(strings.Trim(detailPart, " •-.,;"))

		if feature == "" || detail == "" {
			continue
		}

		feature = capFeatureWords(feature)
		key := strings.ToLower(feature)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		specs = append(specs, KeySpec{Feature: feature, Detail: clipDetail(detail)})

		if len(specs) >= maxKeySpecs {
			break
		}
	}
	return specs
}

// splitSpecSegments breaks the description on newlines, bullets,
// semicolons, and commas that introduce a capitalized word (a stand-in
// for list-like enumerations), except commas directly after a digit.
func splitSpecSegments(s string) []string {
	var segments []string
	var current strings.Builder
	runes := []rune(s)

	flush := func() {
		segments = append(segments, current.String())
		current.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '\n', '•', ';':
			flush()
			continue
		case ',':
			afterDigit := i > 0 && unicode.IsDigit(runes[i-1])
			j := i + 1
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			if !afterDigit && j < len(runes) && unicode.IsUpper(runes[j]) {
				flush()
				continue
			}
		}
		current.WriteRune(r)
	}
	flush()
	return segments
}

// cleanKeySpecs re-validates model-produced specs: trims, enforces the
// word and character bounds, dedupes case-insensitively and caps the list.
func cleanKeySpecs(raw []KeySpec) []KeySpec {
	cleaned := make([]KeySpec, 0, maxKeySpecs)
	seen := make(map[string]struct{})

	for _, spec := range raw {
		feature := strings.TrimSpace(spec.Feature)
		detail := strings.TrimSpace(spec.Detail)
		if feature == "" || detail == "" {
			continue
		}

		feature = capFeatureWords(feature)
		key := strings.ToLower(feature)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, KeySpec{Feature: feature, Detail: clipDetail(detail)})

		if len(cleaned) >= maxKeySpecs {
			break
		}
	}
	return cleaned
}

func capFeatureWords(feature string) string {
	words := strings.Fields(feature)
	if len(words) > maxFeatureWords {
		words = words[:maxFeatureWords]
	}
	return strings.Join(words, " ")
}

func clipDetail(detail string) string {
	runes := []rune(detail)
	if len(runes) <= maxDetailChars {
		return detail
	}
	return string(runes[:detailClipChars]) + detailClipEllipsis
}
