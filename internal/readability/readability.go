// Package readability computes reading-difficulty scores for English text.
package readability

import (
	"math"
	"strings"
	"unicode"
)

// Metrics holds the scores reported next to original and simplified text.
type Metrics struct {
	FleschKincaidGrade float64 `json:"flesch_kincaid_grade"`
	FleschReadingEase  float64 `json:"flesch_reading_ease"`
	SyllableCount      int     `json:"syllable_count"`
	DifficultWords     int     `json:"difficult_words"`
}

// Scorer scores a text. Implementations must be pure.
type Scorer interface {
	Score(text string) Metrics
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(text string) Metrics

func (f ScorerFunc) Score(text string) Metrics { return f(text) }

// Flesch is the default Scorer.
var Flesch Scorer = ScorerFunc(Score)

// difficultSyllables is the syllable count from which a word is considered difficult.
const difficultSyllables = 3

// Score returns Flesch-Kincaid grade, Flesch reading ease, total syllables and
// the number of distinct difficult words. Empty text scores zero everywhere.
//
// A difficult word is any word of three or more syllables. There is no easy-word
// list, so DifficultWords differs from textstat's difficult_words, which counts
// words of two or more syllables missing from the Dale-Chall list.
func Score(text string) Metrics {
	words := Words(text)
	if len(words) == 0 {
		return Metrics{}
	}

	syllables := 0
	difficult := make(map[string]struct{})
	for _, w := range words {
		n := Syllables(w)
		syllables += n
		if n >= difficultSyllables {
			difficult[strings.ToLower(w)] = struct{}{}
		}
	}

	wc := float64(len(words))
	wordsPerSentence := wc / float64(Sentences(text))
	syllablesPerWord := float64(syllables) / wc

	return Metrics{
		FleschKincaidGrade: round2(0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59),
		FleschReadingEase:  round2(206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord),
		SyllableCount:      syllables,
		DifficultWords:     len(difficult),
	}
}

// Words splits text into words, dropping surrounding punctuation.
// Apostrophes and hyphens inside a word are kept.
func Words(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool { return !isWordRune(r) })
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Sentences counts the segments between runs of terminal punctuation that
// contain at least one word. Text without any counts as one sentence.
func Sentences(text string) int {
	n := 0
	for _, seg := range strings.FieldsFunc(text, isTerminator) {
		if strings.IndexFunc(seg, isWordRune) >= 0 {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func isTerminator(r rune) bool { return r == '.' || r == '!' || r == '?' }

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

// Syllables estimates the syllable count of a single word from its vowel
// groups. Every word with a letter has at least one syllable.
func Syllables(word string) int {
	w := strings.ToLower(word)
	letters := make([]rune, 0, len(w))
	for _, r := range w {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range letters {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	n := len(letters)
	// Silent final "e" (but "-le" after a consonant is voiced: "table").
	if n > 2 && letters[n-1] == 'e' && !isVowel(letters[n-2]) &&
		!(letters[n-2] == 'l' && !isVowel(letters[n-3])) {
		count--
	}
	// "-es" / "-ed" endings rarely add a syllable unless after t/d/s/z sounds.
	if n > 3 && (letters[n-1] == 's' || letters[n-1] == 'd') && letters[n-2] == 'e' &&
		!strings.ContainsRune("tdszcgx", letters[n-3]) && !isVowel(letters[n-3]) {
		count--
	}

	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
