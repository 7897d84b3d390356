package vectorstore

// Cosine returns the cosine similarity of two sparse vectors, bounded
// to [0,1]. If either magnitude is zero the similarity is 0; there is
// no division by zero.
func Cosine(a, b Vector) float64 {
	if a.Magnitude == 0 || b.Magnitude == 0 {
		return 0
	}

	// Walk the smaller term map; only shared terms contribute.
	small, large := a.Terms, b.Terms
	if len(small) > len(large) {
		small, large = large, small
	}

	var dot float64
	for term, w := range small {
		if other, ok := large[term]; ok {
			dot += w * other
		}
	}

	sim := dot / (a.Magnitude * b.Magnitude)
	// Float drift can push an exact self-match a hair past 1.
	if sim > 1 {
		sim = 1
	}
	if sim < 0 {
		sim = 0
	}
	return sim
}
