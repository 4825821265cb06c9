package agents

import (
	"reflect"
	"testing"
)

func TestExtractKeyTerms(t *testing.T) {
	original := `This Service Agreement between Acme Corporation and the "Service Provider" covers Section 4.2 payment obligations.`
	amendment := `The First Amendment modifies Section 4.2 and adds the "Net Payment Window" defined term.`

	terms := ExtractKeyTerms(original, amendment)
	if len(terms) == 0 {
		t.Fatal("ExtractKeyTerms() returned no terms")
	}

	want := map[string]bool{
		"Service Provider":   true, // quoted phrase
		"Net Payment Window": true, // quoted phrase
		"Service Agreement":  true, // capitalized two-word phrase
		"Section 4.2":        true, // section reference
	}
	have := make(map[string]bool, len(terms))
	for _, term := range terms {
		have[term] = true
	}
	for term := range want {
		if !have[term] {
			t.Errorf("missing expected term %q in %v", term, terms)
		}
	}
}

func TestExtractKeyTermsDeduplicates(t *testing.T) {
	text := `"Payment Terms" and "payment terms" and "PAYMENT TERMS"`
	terms := ExtractKeyTerms(text, "")
	count := 0
	for _, term := range terms {
		if term == "Payment Terms" || term == "payment terms" || term == "PAYMENT TERMS" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("case-insensitive duplicates kept: %v", terms)
	}
}

func TestExtractKeyTermsCap(t *testing.T) {
	var text string
	for _, w := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel", "India", "Juliet"} {
		text += `"` + w + ` One" "` + w + ` Two" `
	}
	terms := ExtractKeyTerms(text, text)
	if len(terms) > maxKeyTerms {
		t.Errorf("got %d terms, cap is %d", len(terms), maxKeyTerms)
	}
}

func TestExtractKeyTermsDeterministic(t *testing.T) {
	original := `The "Master Agreement" under Section 2.1 governs Delivery Terms.`
	first := ExtractKeyTerms(original, "")
	for i := 0; i < 5; i++ {
		if got := ExtractKeyTerms(original, ""); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: %v, want %v", i, got, first)
		}
	}
}

func TestExtractKeyTermsEmptyInput(t *testing.T) {
	if terms := ExtractKeyTerms("", ""); len(terms) != 0 {
		t.Errorf("ExtractKeyTerms(\"\", \"\") = %v, want empty", terms)
	}
}
