// Package textindex builds TF-IDF vectors over a small document corpus and the
// all-pairs cosine similarity matrix between them.
//
// Weighting follows the usual smoothed scheme:
//
//	tf(t, d)  = raw count of t in d
//	idf(t)    = ln((1 + n) / (1 + df(t))) + 1
//	w(t, d)   = tf(t, d) * idf(t), then each vector is L2-normalised
//
// The whole matrix is recomputed on every Fit; there is no incremental update.
package textindex

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Options configures tokenisation.
type Options struct {
	// StopWords are dropped after lowercasing. Nil disables stop-word removal.
	StopWords []string
}

// DefaultOptions removes English stop words.
func DefaultOptions() Options {
	return Options{StopWords: EnglishStopWords}
}

// Vector is a sparse, L2-normalised document vector. Indices are sorted.
type Vector struct {
	Indices []int
	Values  []float64
}

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of two sparse vectors.
func Dot(a, b Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Model is a fitted vocabulary with its IDF weights and the vectors of the
// documents it was fitted on.
type Model struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	stopWords  map[string]struct{}
	vectors    []Vector
}

// Fit learns the vocabulary and IDF weights from docs and vectorises them.
// Vocabulary indices follow lexical term order.
func Fit(docs []string, opts Options) *Model {
	m := &Model{stopWords: make(map[string]struct{}, len(opts.StopWords))}
	for _, w := range opts.StopWords {
		m.stopWords[w] = struct{}{}
	}

	tokenized := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		tokenized[i] = m.tokens(doc)
		seen := make(map[string]struct{}, len(tokenized[i]))
		for _, tok := range tokenized[i] {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	m.terms = make([]string, 0, len(df))
	for term := range df {
		m.terms = append(m.terms, term)
	}
	sort.Strings(m.terms)

	n := float64(len(docs))
	m.vocabulary = make(map[string]int, len(m.terms))
	m.idf = make([]float64, len(m.terms))
	for i, term := range m.terms {
		m.vocabulary[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	m.vectors = make([]Vector, len(docs))
	for i, toks := range tokenized {
		m.vectors[i] = m.vectorize(toks)
	}
	return m
}

// Vectors returns the vectors of the fitted documents in input order.
func (m *Model) Vectors() []Vector {
	return m.vectors
}

// Vocabulary returns the terms in index order.
func (m *Model) Vocabulary() []string {
	return m.terms
}

// IDF returns the weight of term and whether it is in the vocabulary.
func (m *Model) IDF(term string) (float64, bool) {
	i, ok := m.vocabulary[term]
	if !ok {
		return 0, false
	}
	return m.idf[i], true
}

// Transform vectorises a new document against the fitted vocabulary. Unknown
// terms are ignored.
func (m *Model) Transform(doc string) Vector {
	return m.vectorize(m.tokens(doc))
}

func (m *Model) vectorize(tokens []string) Vector {
	counts := make(map[int]float64)
	for _, tok := range tokens {
		if idx, ok := m.vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	v := Vector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		v.Indices = append(v.Indices, idx)
	}
	sort.Ints(v.Indices)
	for _, idx := range v.Indices {
		v.Values = append(v.Values, counts[idx]*m.idf[idx])
	}

	if norm := v.Norm(); norm > 0 {
		for i := range v.Values {
			v.Values[i] /= norm
		}
	}
	return v
}

func (m *Model) tokens(doc string) []string {
	var out []string
	for _, tok := range Tokenize(doc) {
		if _, stop := m.stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Tokenize lowercases doc and splits it into runs of two or more word
// characters (letters, digits, marks and underscore).
func Tokenize(doc string) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_')
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
