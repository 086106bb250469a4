package topic

import (
	"strings"
	"testing"
)

func TestExtractUsesSubjectPattern(t *testing.T) {
	summary := "Transformers dominate NLP. This paper proposes a sparse attention scheme for long documents. Results are strong."
	got := Extract(summary, "")
	if got != "a sparse attention scheme for long documents" {
		t.Fatalf("unexpected topic %q", got)
	}
}

func TestExtractFallsBackToScoredSentence(t *testing.T) {
	summary := "Short intro. We introduce a novel framework for protein folding prediction. It works."
	got := Extract(summary, "")
	if got != "We introduce a novel framework for protein folding prediction" {
		t.Fatalf("unexpected topic %q", got)
	}
}

func TestExtractFallsBackToPDFText(t *testing.T) {
	got := Extract("", "\n\n  Graph Neural Networks for Traffic Forecasting  \nAbstract")
	if got != "Graph Neural Networks for Traffic Forecasting" {
		t.Fatalf("unexpected topic %q", got)
	}
}

func TestExtractCapsWords(t *testing.T) {
	summary := "This study investigates " + strings.Repeat("very ", 20) + "long topics."
	got := Extract(summary, "")
	if n := len(strings.Fields(got)); n != MaxWords {
		t.Fatalf("expected %d words, got %d (%q)", MaxWords, n, got)
	}
}

func TestExtractEmpty(t *testing.T) {
	if got := Extract("", ""); got != "" {
		t.Fatalf("expected empty topic, got %q", got)
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two!  Three? tail")
	want := []string{"One.", "Two!", "Three?", "tail"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d: got %q want %q", i, got[i], want[i])
		}
	}
}
