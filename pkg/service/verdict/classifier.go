// Package verdict derives a coarse verdict/confidence pair from a
// finalized answer text. The default implementation is a keyword
// heuristic; the Classifier interface exists so a structured-output
// strategy can replace it without touching the query client.
package verdict

import (
	"strings"

	"github.com/newsverify/adkbridge/pkg/model"
)

type Classifier interface {
	Classify(text string) (model.Verdict, float64)
}

// Keyword classifies purely on surface lexical cues, case-insensitive.
// It is total: any input, including the empty string, yields a result.
type Keyword struct{}

func NewKeyword() *Keyword {
	return &Keyword{}
}

func (x *Keyword) Classify(text string) (model.Verdict, float64) {
	lower := strings.ToLower(text)

	v := model.VerdictUnverified
	if strings.Contains(lower, "legitimate") || strings.Contains(lower, "verdict: true") {
		v = model.VerdictVerified
	}

	confidence := 0.5
	if strings.Contains(lower, "confidence: 1.0") {
		confidence = 1.0
	}

	return v, confidence
}

var _ Classifier = (*Keyword)(nil)
