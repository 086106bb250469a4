// Package topic guesses a short label for a paper from its summary. It is a
// best-effort heuristic: an empty result is a valid answer.
package topic

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxWords caps the length of an extracted topic.
const MaxWords = 12

var subjectPattern = regexp.MustCompile(`(?i)\b(?:this|the|our) (?:paper|study|work|article|research)\s+(?:proposes|presents|introduces|studies|investigates|explores|examines|describes|addresses|analy[sz]es|focuses on|is about)\s+([^.!?\n]+)`)

var keywordWeights = map[string]int{
	"propose": 4, "introduce": 4, "present": 3, "investigate": 3, "study": 2,
	"framework": 3, "method": 3, "model": 2, "approach": 2, "novel": 2,
	"architecture": 2, "analysis": 1, "result": 1, "experiment": 1,
}

// Extract returns a topic from summary, falling back to the first non-empty
// line of pdfText.
func Extract(summary, pdfText string) string {
	if m := subjectPattern.FindStringSubmatch(summary); m != nil {
		if t := clip(m[1]); t != "" {
			return t
		}
	}
	if t := clip(bestSentence(summary)); t != "" {
		return t
	}
	for _, line := range strings.Split(pdfText, "\n") {
		if t := clip(line); t != "" {
			return t
		}
	}
	return ""
}

func bestSentence(text string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return ""
	}

	type candidate struct {
		text  string
		score int
		idx   int
	}
	candidates := make([]candidate, 0, len(sentences))
	for idx, sentence := range sentences {
		lower := strings.ToLower(sentence)
		score := 0
		for keyword, weight := range keywordWeights {
			if strings.Contains(lower, keyword) {
				score += weight
			}
		}
		if idx == 0 {
			score++
		}
		if len(sentence) < 20 {
			score--
		}
		candidates = append(candidates, candidate{text: sentence, score: score, idx: idx})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score == candidates[j].score {
			return candidates[i].idx < candidates[j].idx
		}
		return candidates[i].score > candidates[j].score
	})
	return candidates[0].text
}

func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var sentences []string
	start := 0
	for idx, r := range text {
		if idx < start {
			continue
		}
		if r == '.' || r == '!' || r == '?' {
			end := idx + utf8.RuneLen(r)
			if segment := strings.TrimSpace(text[start:end]); segment != "" {
				sentences = append(sentences, segment)
			}
			start = end
			for start < len(text) {
				next, size := utf8.DecodeRuneInString(text[start:])
				if !unicode.IsSpace(next) {
					break
				}
				start += size
			}
		}
	}
	if start < len(text) {
		if segment := strings.TrimSpace(text[start:]); segment != "" {
			sentences = append(sentences, segment)
		}
	}
	return sentences
}

func clip(s string) string {
	words := strings.Fields(s)
	if len(words) > MaxWords {
		words = words[:MaxWords]
	}
	out := strings.Join(words, " ")
	return strings.TrimRightFunc(out, func(r rune) bool {
		return unicode.IsPunct(r) && r != ')' && r != '"'
	})
}
