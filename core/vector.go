package core

import "math"

// CosineSimilarity returns 1 minus the cosine distance between two vectors,
// a value in [-1, 1] where 1 means semantically identical direction.
// It is symmetric in its arguments. Returns ErrDegenerateVector when either
// vector has zero magnitude; callers must propagate the score as undefined
// rather than substituting 0.
func CosineSimilarity(a, b []float32) (float32, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	for _, v := range a[n:] {
		magA += float64(v) * float64(v)
	}
	for _, v := range b[n:] {
		magB += float64(v) * float64(v)
	}

	if magA == 0 || magB == 0 {
		return 0, ErrDegenerateVector
	}
	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB))), nil
}

// NormalizeVector normalizes a vector to unit length.
// Returns a new vector. If the input is a zero vector, returns a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	var magnitude float32
	for _, val := range v {
		magnitude += val * val
	}
	magnitude = float32(math.Sqrt(float64(magnitude)))

	// Can't normalize zero vector
	if magnitude == 0 {
		result := make([]float32, len(v))
		return result
	}

	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}
