package tui

import "testing"

func TestPageLayoutUpdate(t *testing.T) {
	cases := []struct {
		name           string
		width          int
		height         int
		viewportWidth  int
		viewportHeight int
	}{
		{name: "narrow", width: 80, height: 24, viewportWidth: 76, viewportHeight: 11},
		{name: "wide", width: 200, height: 40, viewportWidth: 196, viewportHeight: 27},
		{name: "tiny", width: 30, height: 10, viewportWidth: minViewportWidth, viewportHeight: 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			layout := newPageLayout()
			layout.Update(tc.width, tc.height)
			if layout.viewportWidth != tc.viewportWidth {
				t.Fatalf("viewport width mismatch: got %d want %d", layout.viewportWidth, tc.viewportWidth)
			}
			if layout.viewportHeight != tc.viewportHeight {
				t.Fatalf("viewport height mismatch: got %d want %d", layout.viewportHeight, tc.viewportHeight)
			}
			if layout.composerHeight != 1 {
				t.Fatalf("composer height mismatch: got %d", layout.composerHeight)
			}
		})
	}
}

func TestPreviewText(t *testing.T) {
	if got := previewText("  short  ", 10); got != "short" {
		t.Fatalf("unexpected preview %q", got)
	}
	if got := previewText("abcdefghijkl", 5); got != "abcde…" {
		t.Fatalf("unexpected preview %q", got)
	}
}
