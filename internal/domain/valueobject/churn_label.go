package valueobject

import "fmt"

// ChurnLabel is the binary classifier output.
type ChurnLabel struct {
	value int
}

var (
	LabelStay  = ChurnLabel{value: 0}
	LabelChurn = ChurnLabel{value: 1}
)

// LabelFromInt converts a raw 0/1 class into a ChurnLabel.
func LabelFromInt(v int) (ChurnLabel, error) {
	switch v {
	case 0:
		return LabelStay, nil
	case 1:
		return LabelChurn, nil
	default:
		return ChurnLabel{}, fmt.Errorf("invalid churn label: %d", v)
	}
}

// LabelFromString reconstructs a label from String().
func LabelFromString(s string) (ChurnLabel, error) {
	switch s {
	case "STAY":
		return LabelStay, nil
	case "CHURN":
		return LabelChurn, nil
	default:
		return ChurnLabel{}, fmt.Errorf("invalid churn label: %s", s)
	}
}

// Int returns 0 or 1.
func (l ChurnLabel) Int() int { return l.value }

// String returns STAY or CHURN.
func (l ChurnLabel) String() string {
	if l.value == 1 {
		return "CHURN"
	}
	return "STAY"
}

// Headline is the wording shown on the result card.
func (l ChurnLabel) Headline() string {
	if l.value == 1 {
		return "Likely to Churn"
	}
	return "Likely to Stay"
}

// IsChurn reports whether the label is the positive class.
func (l ChurnLabel) IsChurn() bool { return l.value == 1 }

// Equal checks equality with another ChurnLabel.
func (l ChurnLabel) Equal(other ChurnLabel) bool { return l.value == other.value }
