package textindex

import (
	"math"
	"reflect"
	"testing"
)

const epsilon = 1e-9

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"lowercases and splits", "Cats ARE great!", []string{"cats", "are", "great"}},
		{"drops single characters", "a b cd e", []string{"cd"}},
		{"keeps digits and underscore", "top_10 of 2024", []string{"top_10", "of", "2024"}},
		{"unicode letters", "Café crème", []string{"café", "crème"}},
		{"empty", "   ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) == 0 && len(tt.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFitRemovesStopWords(t *testing.T) {
	m := Fit([]string{"the cats are great", "and the dogs"}, DefaultOptions())

	for _, term := range m.Vocabulary() {
		switch term {
		case "the", "are", "and":
			t.Errorf("stop word %q in vocabulary", term)
		}
	}
	if _, ok := m.IDF("cats"); !ok {
		t.Error("expected cats in vocabulary")
	}
}

func TestFitIDF(t *testing.T) {
	m := Fit([]string{"apple banana", "apple cherry", "apple"}, Options{})

	appleIDF, _ := m.IDF("apple")
	if math.Abs(appleIDF-1) > epsilon {
		t.Errorf("idf(apple) = %v, want 1 (present in every doc)", appleIDF)
	}

	bananaIDF, _ := m.IDF("banana")
	want := math.Log(4.0/2.0) + 1
	if math.Abs(bananaIDF-want) > epsilon {
		t.Errorf("idf(banana) = %v, want %v", bananaIDF, want)
	}
}

func TestVectorsAreNormalised(t *testing.T) {
	m := Fit([]string{"rockets rockets space", "space station", ""}, DefaultOptions())
	vecs := m.Vectors()

	for i, v := range vecs[:2] {
		if math.Abs(v.Norm()-1) > epsilon {
			t.Errorf("vector %d norm = %v, want 1", i, v.Norm())
		}
	}
	if len(vecs[2].Indices) != 0 {
		t.Errorf("empty document should have empty vector, got %+v", vecs[2])
	}
}

func TestTransformIgnoresUnknownTerms(t *testing.T) {
	m := Fit([]string{"cats are great", "rockets and space"}, DefaultOptions())

	v := m.Transform("cats zebra")
	if len(v.Indices) != 1 {
		t.Fatalf("Transform() = %+v, want one known term", v)
	}
	if math.Abs(Cosine(v, m.Vectors()[0])) < epsilon {
		t.Error("expected overlap with the cats document")
	}
}

func TestCosineMatrixProperties(t *testing.T) {
	docs := []string{
		"Cats are great pets",
		"Cats are nice pets",
		"Rockets and space",
		"",
		"space rockets launch",
	}
	matrix := CosineMatrix(Fit(docs, DefaultOptions()).Vectors())

	if len(matrix) != len(docs) {
		t.Fatalf("matrix rows = %d, want %d", len(matrix), len(docs))
	}
	for i := range matrix {
		if math.Abs(matrix[i][i]-1) > epsilon {
			t.Errorf("matrix[%d][%d] = %v, want 1", i, i, matrix[i][i])
		}
		for j := range matrix[i] {
			if matrix[i][j] != matrix[j][i] {
				t.Errorf("matrix not symmetric at (%d,%d): %v vs %v", i, j, matrix[i][j], matrix[j][i])
			}
			if matrix[i][j] < -1 || matrix[i][j] > 1 {
				t.Errorf("matrix[%d][%d] = %v out of range", i, j, matrix[i][j])
			}
		}
	}

	if matrix[0][1] <= matrix[0][2] {
		t.Errorf("cats docs should be closer than cats/rockets: %v vs %v", matrix[0][1], matrix[0][2])
	}
	if matrix[0][3] != 0 {
		t.Errorf("similarity with empty doc = %v, want 0", matrix[0][3])
	}
}

func TestDot(t *testing.T) {
	a := Vector{Indices: []int{0, 2, 5}, Values: []float64{1, 2, 3}}
	b := Vector{Indices: []int{2, 3, 5}, Values: []float64{4, 7, 1}}

	if got := Dot(a, b); got != 11 {
		t.Errorf("Dot() = %v, want 11", got)
	}
}
