package deck

import (
	"strings"
	"testing"
)

func textBoxForFit(t *testing.T, width, height float64) (*Slide, *Shape) {
	t.Helper()
	p := New()
	s, err := p.AddSlide(1)
	if err != nil {
		t.Fatalf("add slide: %v", err)
	}
	return s, s.AddTextBox(1, 1, width, height, "")
}

func TestEstimateFitShortText(t *testing.T) {
	_, sh := textBoxForFit(t, 6, 1)

	rep := EstimateFit(sh, "One short line", 18)
	if !rep.Fits {
		t.Errorf("short text reported as overflowing: %+v", rep)
	}
	if rep.LineCount != 1 {
		t.Errorf("line count = %d, want 1", rep.LineCount)
	}
	if rep.NeedsOptimization {
		t.Error("short text should not need optimization")
	}
}

func TestEstimateFitOverflowRecommendsSmallerSize(t *testing.T) {
	_, sh := textBoxForFit(t, 2, 0.5)

	long := strings.Repeat("overflowing content ", 30)
	rep := EstimateFit(sh, long, 32)
	if rep.Fits {
		t.Fatal("expected overflow for long text in a tiny box")
	}
	if !rep.NeedsOptimization {
		t.Error("overflow should request optimization")
	}
	if rep.RecommendedSize >= 32 && rep.RecommendedSize != 0 {
		t.Errorf("recommended size %d not smaller than requested 32", rep.RecommendedSize)
	}
}

func TestAutoFixTextShrinksOverflowingShapes(t *testing.T) {
	slide, sh := textBoxForFit(t, 2, 0.5)
	sh.SetText(strings.Repeat("dense content ", 40))
	size := 40
	sh.Format(FormatOptions{FontSize: &size})

	rep := AutoFixText(slide, 0, 0)
	if rep.ShapesAdjusted == 0 {
		t.Fatal("expected at least one shape to be adjusted")
	}

	adjusted := sh.Frame.Paragraphs[0].Runs[0].Props.Size
	if adjusted == nil || *adjusted >= 40 {
		t.Errorf("font size after fix = %v, want < 40", adjusted)
	}
	if adjusted != nil && *adjusted < DefaultMinFontSize {
		t.Errorf("font size %d below minimum %d", *adjusted, DefaultMinFontSize)
	}
}

func TestAutoFixTextLeavesFittingShapesAlone(t *testing.T) {
	slide, sh := textBoxForFit(t, 8, 2)
	sh.SetText("fits fine")
	size := 18
	sh.Format(FormatOptions{FontSize: &size})

	rep := AutoFixText(slide, 0, 0)
	if rep.ShapesAdjusted != 0 {
		t.Errorf("adjusted %d shapes, want 0: %v", rep.ShapesAdjusted, rep.Adjustments)
	}
	if got := sh.Frame.Paragraphs[0].Runs[0].Props.Size; got == nil || *got != 18 {
		t.Errorf("font size changed: %v", got)
	}
}
