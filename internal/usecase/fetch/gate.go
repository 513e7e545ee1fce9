package fetch

import (
	"context"

	"feedsift/internal/domain/entity"
	"feedsift/internal/utils/text"
)

// Outcome is what the length gate decided for one item.
type Outcome string

const (
	// OutcomeKeep means the item is persisted.
	OutcomeKeep Outcome = "keep"
	// OutcomeDiscarded means the classifier rejected the item.
	OutcomeDiscarded Outcome = "discarded"
	// OutcomeTooShort means the final body is below the minimum length.
	OutcomeTooShort Outcome = "too_short"
)

// Decision is the gate result. Body and IsCondensed are set only for
// OutcomeKeep and OutcomeTooShort.
type Decision struct {
	Outcome     Outcome
	Body        string
	IsCondensed bool
}

// LengthGate turns a resolved body and its classification into a decision.
// Bodies longer than Max runes are summarized; final bodies shorter than
// Min runes are dropped.
type LengthGate struct {
	Min        int
	Max        int
	summarizer Summarizer
}

// NewLengthGate creates a gate with the given bounds.
func NewLengthGate(minLength, maxLength int, summarizer Summarizer) *LengthGate {
	return &LengthGate{Min: minLength, Max: maxLength, summarizer: summarizer}
}

// Decide applies the gate. The summarizer is called only for kept items
// over the maximum length.
func (g *LengthGate) Decide(ctx context.Context, body string, c entity.Classification) Decision {
	if !c.Keep {
		return Decision{Outcome: OutcomeDiscarded}
	}

	d := Decision{Outcome: OutcomeKeep, Body: body}
	if text.CountRunes(body) > g.Max {
		d.Body = g.summarizer.Summarize(ctx, body)
		d.IsCondensed = true
	}

	if text.CountRunes(d.Body) < g.Min {
		d.Outcome = OutcomeTooShort
	}
	return d
}
