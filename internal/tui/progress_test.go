package tui

import (
	"strings"
	"testing"
)

func TestProgressDrawsBar(t *testing.T) {
	var sb strings.Builder
	p := NewProgress(&sb)

	p.OnStep(500, 1000, -1.0, 87.3)
	out := sb.String()

	if !strings.Contains(out, "500/1000") {
		t.Errorf("missing counter: %q", out)
	}
	if !strings.Contains(out, "T=87.3") {
		t.Errorf("missing temperature: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("#", barWidth/2)) {
		t.Errorf("bar not half filled: %q", out)
	}
}

func TestProgressFinishEndsLine(t *testing.T) {
	var sb strings.Builder
	p := NewProgress(&sb)

	p.OnStep(1000, 1000, -1.0, 87.3)
	p.Finish(1000)

	out := sb.String()
	if !strings.HasSuffix(out, "\n") {
		t.Errorf("missing trailing newline: %q", out)
	}
	if !strings.Contains(out, strings.Repeat("#", barWidth)) {
		t.Errorf("bar not full at finish: %q", out)
	}

	// Finish is idempotent and further steps are ignored.
	before := sb.Len()
	p.Finish(1000)
	p.OnStep(1, 1000, 0, 0)
	if sb.Len() != before {
		t.Error("output after Finish")
	}
}
