package textindex

// CosineMatrix returns the symmetric matrix of pairwise cosine similarities.
// The diagonal is 1 for every document, including empty ones, and values are
// clamped to [-1, 1] to absorb rounding.
func CosineMatrix(vectors []Vector) [][]float64 {
	n := len(vectors)
	norms := make([]float64, n)
	for i, v := range vectors {
		norms[i] = v.Norm()
	}

	matrix := make([][]float64, n)
	backing := make([]float64, n*n)
	for i := range matrix {
		matrix[i] = backing[i*n : (i+1)*n]
	}

	for i := 0; i < n; i++ {
		matrix[i][i] = 1
		for j := i + 1; j < n; j++ {
			sim := cosine(vectors[i], vectors[j], norms[i], norms[j])
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}
	return matrix
}

// Cosine returns the cosine similarity of a and b, 0 if either is empty.
func Cosine(a, b Vector) float64 {
	return cosine(a, b, a.Norm(), b.Norm())
}

func cosine(a, b Vector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := Dot(a, b) / (normA * normB)
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}
