package types

import "testing"

func TestSwizzle(t *testing.T) {
	tests := []struct {
		base  Kind
		field string
		want  Kind
		issue Issue
	}{
		{KindVec3, "xy", KindVec2, IssueNone},
		{KindVec4, "w", KindFloat, IssueNone},
		{KindVec4, "wzyx", KindVec4, IssueNone},
		{KindVec2, "z", KindError, IssueSwizzleOutOfBound},
		{KindVec3, "xw", KindError, IssueSwizzleOutOfBound},
		{KindVec4, "xyzzw", KindError, IssueOversizedVector},
		{KindVec3, "xyzw", KindError, IssueOversizedVector},
		{KindVec3, "xq", KindError, IssueInvalidSwizzle},
		{KindVec3, "", KindError, IssueInvalidSwizzle},
		{KindInt, "x", KindError, IssueInaccessibleSwizzle},
		{KindMat2, "x", KindError, IssueInaccessibleSwizzle},
		{KindError, "q", KindError, IssueNone},
	}
	for _, tt := range tests {
		got, issue := Swizzle(tt.base, tt.field)
		if got != tt.want || issue != tt.issue {
			t.Fatalf("Swizzle(%s, %q) = %s/%s, want %s/%s", tt.base, tt.field, got, issue, tt.want, tt.issue)
		}
	}
}

func TestSwizzleCharsetBeforeLength(t *testing.T) {
	// лишняя длина не маскирует неверный символ
	if _, issue := Swizzle(KindVec2, "xyzq"); issue != IssueInvalidSwizzle {
		t.Fatalf("want invalid swizzle, got %s", issue)
	}
}

func TestSwizzleLanes(t *testing.T) {
	got := SwizzleLanes("wzx")
	want := []int{3, 2, 0}
	if len(got) != len(want) {
		t.Fatalf("unexpected lanes %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected lanes %v", got)
		}
	}
}
