package types

// MaxSwizzle is the longest accepted selector.
const MaxSwizzle = 4

// Lane returns the component index of a swizzle letter.
func Lane(c byte) (int, bool) {
	switch c {
	case 'x':
		return 0, true
	case 'y':
		return 1, true
	case 'z':
		return 2, true
	case 'w':
		return 3, true
	default:
		return 0, false
	}
}

// SwizzleLanes decodes a validated selector into lane indices.
func SwizzleLanes(field string) []int {
	lanes := make([]int, 0, len(field))
	for i := 0; i < len(field); i++ {
		idx, _ := Lane(field[i])
		lanes = append(lanes, idx)
	}
	return lanes
}

// Swizzle types base.field. The checks run as: base kind, letter set, selector
// length, then per-letter range against the base width.
func Swizzle(base Kind, field string) (Kind, Issue) {
	if poisoned(base) {
		return KindError, IssueNone
	}
	if !base.IsVector() {
		return KindError, IssueInaccessibleSwizzle
	}
	if field == "" {
		return KindError, IssueInvalidSwizzle
	}
	for i := 0; i < len(field); i++ {
		if _, ok := Lane(field[i]); !ok {
			return KindError, IssueInvalidSwizzle
		}
	}
	if len(field) > MaxSwizzle || len(field) > base.Lanes() {
		return KindError, IssueOversizedVector
	}
	for i := 0; i < len(field); i++ {
		if idx, _ := Lane(field[i]); idx >= base.Lanes() {
			return KindError, IssueSwizzleOutOfBound
		}
	}
	return VectorOf(len(field)), IssueNone
}
