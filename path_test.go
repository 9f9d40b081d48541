package secstore

import (
	"slices"
	"testing"
)

func TestSplitPathKeepsEmptySegments(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{path: "", want: []string{""}},
		{path: ":", want: []string{"", ""}},
		{path: "a", want: []string{"a"}},
		{path: "a:b:c", want: []string{"a", "b", "c"}},
		{path: "a::b", want: []string{"a", "", "b"}},
		{path: ":a:", want: []string{"", "a", ""}},
	}
	for _, tc := range cases {
		if got := splitPath(tc.path); !slices.Equal(got, tc.want) {
			t.Fatalf("splitPath(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestJoinPathRoundTrip(t *testing.T) {
	path := JoinPath("a", "b", "c")
	if path != "a:b:c" {
		t.Fatalf("expected a:b:c, got %q", path)
	}
	if !slices.Equal(splitPath(path), []string{"a", "b", "c"}) {
		t.Fatalf("split after join mismatch: %v", splitPath(path))
	}
}
