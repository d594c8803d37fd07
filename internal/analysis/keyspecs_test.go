package analysis

import (
	"strings"
	"testing"
)

func TestDeriveKeySpecsColonPairs(t *testing.T) {
	specs := deriveKeySpecs("Material: stainless steel\nCapacity: 750 ml")

	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %+v", specs)
	}
	if specs[0].Feature != "Material" || specs[0].Detail != "stainless steel" {
		t.Fatalf("unexpected first spec: %+v", specs[0])
	}
	if specs[1].Feature != "Capacity" || specs[1].Detail != "750 ml" {
		t.Fatalf("unexpected second spec: %+v", specs[1])
	}
}

func TestDeriveKeySpecsBulletsAndSemicolons(t *testing.T) {
	specs := deriveKeySpecs("• Weight: 1.2 kg; Height: 30 cm")

	if len(specs) != 2 {
		t.Fatalf("expected 2 specs, got %+v", specs)
	}
	if specs[0].Feature != "Weight" || specs[1].Feature != "Height" {
		t.Fatalf("unexpected features: %+v", specs)
	}
}

func TestDeriveKeySpecsDashPairs(t *testing.T) {
	specs := deriveKeySpecs("Battery life - 10 hours")

	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %+v", specs)
	}
	if specs[0].Feature != "Battery life" || specs[0].Detail != "10 hours" {
		t.Fatalf("unexpected spec: %+v", specs[0])
	}
}

func TestDeriveKeySpecsCommaBeforeCapitalSplits(t *testing.T) {
	specs := deriveKeySpecs("Color: red, Size: large")

	if len(specs) != 2 {
		t.Fatalf("expected comma before capital to split, got %+v", specs)
	}
	if specs[0].Detail != "red" || specs[1].Feature != "Size" {
		t.Fatalf("unexpected specs: %+v", specs)
	}
}

func TestDeriveKeySpecsCommaAfterDigitKept(t *testing.T) {
	specs := deriveKeySpecs("Capacity: 1,5 Liter")

	if len(specs) != 1 {
		t.Fatalf("expected a single spec, got %+v", specs)
	}
	if specs[0].Detail != "1,5 Liter" {
		t.Fatalf("digit comma should not split, got %+v", specs[0])
	}
}

func TestDeriveKeySpecsFeatureSentenceTrimmed(t *testing.T) {
	specs := deriveKeySpecs("Great for travel. Capacity: 750 ml")

	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %+v", specs)
	}
	if specs[0].Feature != "Capacity" {
		t.Fatalf("expected leading sentence to be dropped, got %+v", specs[0])
	}
}

func TestDeriveKeySpecsFeatureWordCap(t *testing.T) {
	specs := deriveKeySpecs("one two three four five six seven eight: detail")

	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %+v", specs)
	}
	if got := len(strings.Fields(specs[0].Feature)); got != maxFeatureWords {
		t.Fatalf("expected %d feature words, got %d", maxFeatureWords, got)
	}
}

func TestDeriveKeySpecsDetailClipped(t *testing.T) {
	long := strings.Repeat("d", 300)
	specs := deriveKeySpecs("Feature: " + long)

	if len(specs) != 1 {
		t.Fatalf("expected 1 spec, got %+v", specs)
	}
	detail := []rune(specs[0].Detail)
	if len(detail) != detailClipChars+1 {
		t.Fatalf("expected %d runes, got %d", detailClipChars+1, len(detail))
	}
	if !strings.HasSuffix(specs[0].Detail, detailClipEllipsis) {
		t.Fatalf("expected ellipsis suffix, got %q", specs[0].Detail)
	}
}

func TestDeriveKeySpecsDedupeCaseInsensitive(t *testing.T) {
	specs := deriveKeySpecs("Weight: 1 kg\nWEIGHT: 2 kg")

	if len(specs) != 1 {
		t.Fatalf("expected duplicate feature to be dropped, got %+v", specs)
	}
	if specs[0].Detail != "1 kg" {
		t.Fatalf("expected first occurrence to win, got %+v", specs[0])
	}
}

func TestDeriveKeySpecsCapEight(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		b.WriteString(strings.Repeat(string(rune('a'+i)), 3))
		b.WriteString(": value\n")
	}
	specs := deriveKeySpecs(b.String())

	if len(specs) != maxKeySpecs {
		t.Fatalf("expected %d specs, got %d", maxKeySpecs, len(specs))
	}
}

func TestDeriveKeySpecsUnstructuredText(t *testing.T) {
	if specs := deriveKeySpecs("just a plain sentence with no structure"); len(specs) != 0 {
		t.Fatalf("expected no specs, got %+v", specs)
	}
	if specs := deriveKeySpecs("   "); len(specs) != 0 {
		t.Fatalf("expected no specs for blank text, got %+v", specs)
	}
}

func TestCleanKeySpecsEnforcesBounds(t *testing.T) {
	raw := []KeySpec{
		{Feature: "  Weight  ", Detail: "  1 kg  "},
		{Feature: "weight", Detail: "duplicate"},
		{Feature: "", Detail: "no feature"},
		{Feature: "no detail", Detail: "   "},
		{Feature: "one two three four five six seven", Detail: strings.Repeat("x", 300)},
	}

	cleaned := cleanKeySpecs(raw)

	if len(cleaned) != 2 {
		t.Fatalf("expected 2 surviving specs, got %+v", cleaned)
	}
	if cleaned[0].Feature != "Weight" || cleaned[0].Detail != "1 kg" {
		t.Fatalf("unexpected first spec: %+v", cleaned[0])
	}
	if got := len(strings.Fields(cleaned[1].Feature)); got != maxFeatureWords {
		t.Fatalf("expected capped feature, got %q", cleaned[1].Feature)
	}
	if !strings.HasSuffix(cleaned[1].Detail, detailClipEllipsis) {
		t.Fatalf("expected clipped detail, got %d chars", len(cleaned[1].Detail))
	}
}
