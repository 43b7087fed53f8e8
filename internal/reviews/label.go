package reviews

import (
	"fmt"
	"math"

	"github.com/JaimeStill/verdict/pkg/classifier"
)

// Label is the normalized sentiment of a review.
type Label string

const (
	Positive Label = "positive"
	Negative Label = "negative"
)

// Display returns the label as shown to users.
func (l Label) Display() string {
	switch l {
	case Positive:
		return "긍정"
	case Negative:
		return "부정"
	default:
		return string(l)
	}
}

// Emoji returns the glyph shown beside the label.
func (l Label) Emoji() string {
	switch l {
	case Positive:
		return "👍"
	case Negative:
		return "👎"
	default:
		return ""
	}
}

// LabelMap binds the classifier's opaque tags to labels.
type LabelMap struct {
	Positive string
	Negative string
}

// Resolve maps a classifier tag to its Label.
// Any tag other than the two configured ones yields ErrUnexpectedLabel.
func (m LabelMap) Resolve(tag string) (Label, error) {
	switch tag {
	case m.Positive:
		return Positive, nil
	case m.Negative:
		return Negative, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnexpectedLabel, tag)
	}
}

func (m LabelMap) result(p classifier.Prediction) (Label, float64, error) {
	label, err := m.Resolve(p.Tag)
	if err != nil {
		return "", 0, err
	}
	if math.IsNaN(p.Score) || p.Score < 0 || p.Score > 1 {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidScore, p.Score)
	}
	return label, p.Score, nil
}
