package vectorstore

import (
	"math"
	"time"
)

// Vectorizer converts text into sparse TF-IDF vectors using a fitted
// vocabulary. A zero-value Vectorizer is unfitted and vectorizes
// everything to the zero vector.
type Vectorizer struct {
	vocab Vocabulary
}

// NewVectorizer returns an unfitted vectorizer.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{}
}

// NewVectorizerFromVocabulary restores a vectorizer from a persisted
// vocabulary.
func NewVectorizerFromVocabulary(vocab Vocabulary) *Vectorizer {
	return &Vectorizer{vocab: vocab}
}

// Fit computes per-term document frequencies over the corpus and
// derives the smoothed IDF table: ln((N+1)/(df+1)) + 1. The smoothing
// keeps every weight positive and finite, including for terms that
// appear in all documents. An empty corpus fits to an empty
// vocabulary; that is not an error.
func (v *Vectorizer) Fit(documents []string) {
	df := make(map[string]int)
	for _, doc := range documents {
		seen := make(map[string]bool)
		for _, term := range Tokenize(doc) {
			seen[term] = true
		}
		for term := range seen {
			df[term]++
		}
	}

	n := float64(len(documents))
	idf := make(map[string]float64, len(df))
	for term, count := range df {
		idf[term] = math.Log((n+1)/float64(count+1)) + 1
	}

	v.vocab = Vocabulary{
		DocumentCount: len(documents),
		IDF:           idf,
		BuiltAt:       time.Now().UTC(),
	}
}

// Vocabulary returns the fitted vocabulary.
func (v *Vectorizer) Vocabulary() Vocabulary {
	return v.vocab
}

// IsFitted reports whether the vectorizer carries a usable IDF table.
func (v *Vectorizer) IsFitted() bool {
	return len(v.vocab.IDF) > 0
}

// Vectorize computes the TF-IDF vector of text. Term frequency is
// normalized by total token count; terms outside the vocabulary are
// dropped. Text with no recognized terms yields the zero vector.
func (v *Vectorizer) Vectorize(text string) Vector {
	terms := Tokenize(text)
	if len(terms) == 0 {
		return Vector{Terms: map[string]float64{}}
	}

	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}

	weights := make(map[string]float64)
	var sumSquares float64
	total := float64(len(terms))
	for term, count := range counts {
		idf, ok := v.vocab.IDF[term]
		if !ok {
			continue
		}
		w := float64(count) / total * idf
		weights[term] = w
		sumSquares += w * w
	}

	return Vector{Terms: weights, Magnitude: math.Sqrt(sumSquares)}
}
