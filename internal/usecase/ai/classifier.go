package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"feedsift/internal/domain/entity"
	"feedsift/internal/observability/metrics"
)

// ErrMalformedClassification is returned by ParseClassification when the
// response does not follow the "flag,category" contract.
var ErrMalformedClassification = errors.New("malformed classification response")

// ClassificationPrompt is the fixed instruction sent before every title.
const ClassificationPrompt = `You are a news triage assistant. Classify the news headline below.

Step 1. Choose exactly one category from this list:
politics, finance, military, tech, society, entertainment, sports, weather, other

Step 2. Decide whether to keep the story.
Discard (flag=0) when any of the following is true:
- the category is sports, military or entertainment;
- the category is politics and the story is purely internal politics of Japan, Korea or Taiwan with no link to other nations;
- the category is politics and the story concerns disciplinary action against a domestic public official or state-enterprise executive for corruption;
- the category is tech and the story is primarily about a single consumer product or software release.
Otherwise keep the story (flag=1).
If you are unsure, discard the story (flag=0).

Step 3. Reply with a single line in the form flag,category
Examples: 1,finance  0,sports
Do not add any other text.

Headline: `

// ParseClassification parses an oracle response of the form "flag,category".
// The flag must be exactly 0 or 1. The category is everything after the
// first comma and may itself contain commas. A kept item can never carry
// the failure category.
func ParseClassification(response string) (entity.Classification, error) {
	flag, category, ok := strings.Cut(strings.TrimSpace(response), ",")
	if !ok {
		return entity.FailedClassification(), fmt.Errorf("%w: no comma in %q", ErrMalformedClassification, response)
	}

	var keep bool
	switch strings.TrimSpace(flag) {
	case "1":
		keep = true
	case "0":
		keep = false
	default:
		return entity.FailedClassification(), fmt.Errorf("%w: flag %q is not 0 or 1", ErrMalformedClassification, flag)
	}

	category = strings.TrimSpace(category)
	if category == "" {
		return entity.FailedClassification(), fmt.Errorf("%w: empty category", ErrMalformedClassification)
	}
	if keep && entity.Category(category) == entity.CategoryFailed {
		return entity.FailedClassification(), fmt.Errorf("%w: kept item labelled %q", ErrMalformedClassification, category)
	}
	return entity.Classification{Keep: keep, Category: entity.Category(category)}, nil
}

// Classifier decides whether an item is worth keeping from its title alone.
// Every failure maps to entity.FailedClassification, so an unavailable or
// misbehaving oracle never retains content.
type Classifier struct {
	oracle Oracle
	model  string
	logger *slog.Logger
}

// NewClassifier creates a classifier. An empty model uses the oracle default.
func NewClassifier(oracle Oracle, model string) *Classifier {
	return &Classifier{oracle: oracle, model: model, logger: slog.Default()}
}

// Classify returns the keep/discard decision for title.
func (c *Classifier) Classify(ctx context.Context, title string) entity.Classification {
	result, err := c.classify(ctx, title)
	if err != nil {
		c.logger.WarnContext(ctx, "classification failed, discarding item",
			slog.String("title", title),
			slog.Any("error", err))
	}
	metrics.RecordClassification(result.Keep, categoryLabel(result.Category))
	return result
}

func (c *Classifier) classify(ctx context.Context, title string) (result entity.Classification, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = entity.FailedClassification(), fmt.Errorf("classifier panic: %v", r)
		}
	}()

	response, err := c.oracle.Ask(ctx, ClassificationPrompt+title, c.model)
	if err != nil {
		return entity.FailedClassification(), fmt.Errorf("ask classifier: %w", err)
	}
	return ParseClassification(StripReasoning(response))
}

// categoryLabel bounds metric cardinality to the closed vocabulary.
func categoryLabel(c entity.Category) string {
	if c.Known() || c == entity.CategoryFailed {
		return string(c)
	}
	return "unrecognized"
}
