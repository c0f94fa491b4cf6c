package exam

// VisualFinding is an abnormality seen on inspection.
type VisualFinding string

const (
	FindingNabothian   VisualFinding = "Nabothian"
	FindingLeukoplakia VisualFinding = "Leukoplakia"
	FindingPolyp       VisualFinding = "Polyp"
	FindingAnyGrowth   VisualFinding = "AnyGrowth"
)

func (v VisualFinding) Valid() bool {
	switch v {
	case FindingNabothian, FindingLeukoplakia, FindingPolyp, FindingAnyGrowth:
		return true
	}
	return false
}

// VIAResult is the outcome of visual inspection with acetic acid.
type VIAResult string

const (
	VIANegative VIAResult = "Negative"
	VIAPositive VIAResult = "Positive"
	VIAInvasive VIAResult = "Invasive/Cancer"
)

func (v VIAResult) Valid() bool {
	switch v {
	case VIANegative, VIAPositive, VIAInvasive:
		return true
	}
	return false
}

type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

func (v YesNo) Valid() bool {
	switch v {
	case Yes, No:
		return true
	}
	return false
}

// QuadrantCount is how many quadrants an acetowhite lesion covers.
type QuadrantCount string

const (
	QuadrantsTwoOrLess QuadrantCount = "TwoOrLess"
	QuadrantsThree     QuadrantCount = "Three"
	QuadrantsFour      QuadrantCount = "Four"
)

func (v QuadrantCount) Valid() bool {
	switch v {
	case QuadrantsTwoOrLess, QuadrantsThree, QuadrantsFour:
		return true
	}
	return false
}

type Quadrant string

const (
	QuadrantIA   Quadrant = "IA"
	QuadrantIB   Quadrant = "IB"
	QuadrantIIA  Quadrant = "IIA"
	QuadrantIIB  Quadrant = "IIB"
	QuadrantIIIA Quadrant = "IIIA"
	QuadrantIIIB Quadrant = "IIIB"
	QuadrantIVA  Quadrant = "IVA"
	QuadrantIVB  Quadrant = "IVB"
)

func (v Quadrant) Valid() bool {
	switch v {
	case QuadrantIA, QuadrantIB, QuadrantIIA, QuadrantIIB,
		QuadrantIIIA, QuadrantIIIB, QuadrantIVA, QuadrantIVB:
		return true
	}
	return false
}

// Action is a follow-up decided at the exam. ActionOthers carries free text
// in ActionsOtherText.
type Action string

const (
	ActionFollow5Years       Action = "Follow5Years"
	ActionMedCervicitis      Action = "MedCervicitis"
	ActionImmediateTreatment Action = "ImmediateTreatment"
	ActionStagingTreatment   Action = "StagingTreatment"
	ActionOthers             Action = "Others"
)

func (v Action) Valid() bool {
	switch v {
	case ActionFollow5Years, ActionMedCervicitis, ActionImmediateTreatment,
		ActionStagingTreatment, ActionOthers:
		return true
	}
	return false
}

// parseSet converts raw codes to T, dropping duplicates and keeping order.
// ok is false when any code is unknown.
func parseSet[T ~string](raw []string, valid func(T) bool) (out []T, ok bool) {
	out = make([]T, 0, len(raw))
	seen := make(map[T]bool, len(raw))
	for _, r := range raw {
		v := T(r)
		if !valid(v) {
			return nil, false
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out, true
}

func toStrings[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = string(v)
	}
	return out
}

func fromStrings[T ~string](in []string) []T {
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = T(v)
	}
	return out
}
