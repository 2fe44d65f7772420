package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"slidesmith/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	decks := service.NewDeckService(nil, t.TempDir())
	return New(Deps{Decks: decks})
}

func callReq(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func resultJSON(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(resultText(t, res)), v); err != nil {
		t.Fatalf("parse result JSON: %v", err)
	}
}

func addSlideForTest(t *testing.T, s *Server, args map[string]any) int {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	if _, ok := args["layout_index"]; !ok {
		args["layout_index"] = float64(1)
	}
	res, err := s.handleAddSlide(context.Background(), callReq(args))
	if err != nil {
		t.Fatalf("add slide: %v", err)
	}
	var out struct {
		SlideIndex int `json:"slide_index"`
	}
	resultJSON(t, res, &out)
	return out.SlideIndex
}

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// ─────────────────────────────────────────────────────────────
// Index validation
// ─────────────────────────────────────────────────────────────

func TestGetSlideInfo_OutOfRangeNamesValidRange(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.decks.Create("test"); err != nil {
		t.Fatalf("create: %v", err)
	}
	addSlideForTest(t, s, nil)
	addSlideForTest(t, s, nil)

	_, err := s.handleGetSlideInfo(context.Background(), callReq(map[string]any{
		"slide_index": float64(5),
	}))
	if err == nil {
		t.Fatal("expected error for out-of-range index")
	}
	if !strings.Contains(err.Error(), "0-1") {
		t.Errorf("error %q does not name the valid range 0-1", err)
	}
}

func TestAddSlide_InvalidLayoutNamesValidRange(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.decks.Create("test"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := s.handleAddSlide(context.Background(), callReq(map[string]any{
		"layout_index": float64(99),
	}))
	if err == nil {
		t.Fatal("expected error for invalid layout index")
	}
	if !strings.Contains(err.Error(), "available layouts 0-") {
		t.Errorf("error %q does not name the layout range", err)
	}
}

func TestTools_NoCurrentPresentation(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleGetSlideInfo(context.Background(), callReq(map[string]any{
		"slide_index": float64(0),
	}))
	if err == nil {
		t.Fatal("expected error when no presentation is open")
	}
}

// ─────────────────────────────────────────────────────────────
// add_slide backgrounds
// ─────────────────────────────────────────────────────────────

func TestAddSlide_SolidBackground(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")

	idx := addSlideForTest(t, s, map[string]any{
		"title":             "Colors",
		"background_type":   "solid",
		"background_colors": "[[10, 20, 30]]",
	})

	pres, _, _ := s.decks.Resolve("")
	slide := pres.Slides[idx]
	if slide.Background == nil || slide.Background.Solid == nil {
		t.Fatal("expected solid background to be set")
	}
	if got := *slide.Background.Solid; got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Errorf("background color = %v, want [10 20 30]", got)
	}
	if slide.Title() != "Colors" {
		t.Errorf("title = %q, want Colors", slide.Title())
	}
}

func TestAddSlide_GradientWithOneColorIsSkipped(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")

	// One gradient stop is not enough; the slide is still added and the
	// background stays unset.
	idx := addSlideForTest(t, s, map[string]any{
		"background_type":   "gradient",
		"background_colors": "[[255, 255, 255]]",
	})

	pres, _, _ := s.decks.Resolve("")
	if pres.Slides[idx].Background != nil {
		t.Error("expected background to remain unset for a one-stop gradient")
	}
}

func TestAddSlide_ProfessionalGradient(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")

	idx := addSlideForTest(t, s, map[string]any{
		"background_type": "professional_gradient",
		"color_scheme":    "modern_blue",
	})

	pres, _, _ := s.decks.Resolve("")
	bg := pres.Slides[idx].Background
	if bg == nil || bg.Gradient == nil {
		t.Fatal("expected gradient background")
	}

	_, err := s.handleAddSlide(context.Background(), callReq(map[string]any{
		"layout_index":    float64(1),
		"background_type": "professional_gradient",
		"color_scheme":    "neon_pink",
	}))
	if err == nil {
		t.Fatal("expected error for unknown scheme")
	}
	if !strings.Contains(err.Error(), "modern_blue") {
		t.Errorf("error %q does not list available schemes", err)
	}
}

// ─────────────────────────────────────────────────────────────
// Placeholders
// ─────────────────────────────────────────────────────────────

func TestPopulatePlaceholder(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	_, err := s.handlePopulatePlaceholder(context.Background(), callReq(map[string]any{
		"slide_index":     float64(idx),
		"placeholder_idx": float64(1),
		"text":            "Body text",
	}))
	if err != nil {
		t.Fatalf("populate: %v", err)
	}

	pres, _, _ := s.decks.Resolve("")
	ph, ok := pres.Slides[idx].PlaceholderByIdx(1)
	if !ok {
		t.Fatal("placeholder 1 missing")
	}
	if ph.Text() != "Body text" {
		t.Errorf("placeholder text = %q", ph.Text())
	}
}

func TestPopulatePlaceholder_UnknownIdxListsAvailable(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	_, err := s.handlePopulatePlaceholder(context.Background(), callReq(map[string]any{
		"slide_index":     float64(idx),
		"placeholder_idx": float64(42),
		"text":            "x",
	}))
	if err == nil {
		t.Fatal("expected error for unknown placeholder idx")
	}
	if !strings.Contains(err.Error(), "available placeholders") {
		t.Errorf("error %q does not list available placeholders", err)
	}
}

func TestAddBulletPoints(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	_, err := s.handleAddBulletPoints(context.Background(), callReq(map[string]any{
		"slide_index":     float64(idx),
		"placeholder_idx": float64(1),
		"bullet_points":   `["First", "Second", "Third"]`,
	}))
	if err != nil {
		t.Fatalf("add bullets: %v", err)
	}

	pres, _, _ := s.decks.Resolve("")
	ph, _ := pres.Slides[idx].PlaceholderByIdx(1)
	if got := len(ph.Frame.Paragraphs); got != 3 {
		t.Errorf("paragraph count = %d, want 3", got)
	}
	if ph.Text() != "First\nSecond\nThird" {
		t.Errorf("bullet text = %q", ph.Text())
	}
}

// ─────────────────────────────────────────────────────────────
// manage_text
// ─────────────────────────────────────────────────────────────

func TestManageText_AddAndFormat(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	res, err := s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "add",
		"slide_index": float64(idx),
		"left":        float64(1),
		"top":         float64(2),
		"width":       float64(4),
		"height":      float64(1),
		"text":        "Hello",
		"font_size":   float64(24),
		"bold":        true,
		"color":       "[255, 0, 0]",
	}))
	if err != nil {
		t.Fatalf("add text: %v", err)
	}
	var out struct {
		ShapeIndex int `json:"shape_index"`
	}
	resultJSON(t, res, &out)

	pres, _, _ := s.decks.Resolve("")
	sh := pres.Slides[idx].Shapes[out.ShapeIndex]
	if sh.Text() != "Hello" {
		t.Errorf("text = %q", sh.Text())
	}
	run := sh.Frame.Paragraphs[0].Runs[0]
	if run.Props.Size == nil || *run.Props.Size != 24 {
		t.Error("font size not applied")
	}
	if run.Props.Bold == nil || !*run.Props.Bold {
		t.Error("bold not applied")
	}
	if run.Props.Color == nil || (*run.Props.Color)[0] != 255 {
		t.Errorf("color not applied: %v", run.Props.Color)
	}
}

func TestManageText_UnknownOperation(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	_, err := s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "rotate",
		"slide_index": float64(idx),
	}))
	if err == nil {
		t.Fatal("expected error for unknown operation")
	}
	if !strings.Contains(err.Error(), "rotate") {
		t.Errorf("error %q does not name the bad operation", err)
	}
}

func TestManageText_NegativeWidthRejected(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	_, err := s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "add",
		"slide_index": float64(idx),
		"width":       float64(-2),
		"text":        "x",
	}))
	if err == nil {
		t.Fatal("expected error for negative width")
	}
	if !strings.Contains(err.Error(), "width must be positive") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestManageText_FormatRunsSkipsTextlessRuns(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	res, err := s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "add",
		"slide_index": float64(idx),
		"text":        "placeholder",
	}))
	if err != nil {
		t.Fatalf("add text: %v", err)
	}
	var added struct {
		ShapeIndex int `json:"shape_index"`
	}
	resultJSON(t, res, &added)

	res, err = s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "format_runs",
		"slide_index": float64(idx),
		"shape_index": float64(added.ShapeIndex),
		"runs": `[
			{"text": "Bold part", "bold": true},
			{"bold": true},
			{"text": "", "italic": true},
			{"text": "Linked", "hyperlink": "https://example.com"}
		]`,
	}))
	if err != nil {
		t.Fatalf("format runs: %v", err)
	}
	var out struct {
		Applied int `json:"runs_applied"`
		Skipped int `json:"runs_skipped"`
	}
	resultJSON(t, res, &out)
	if out.Applied != 2 || out.Skipped != 2 {
		t.Errorf("applied/skipped = %d/%d, want 2/2", out.Applied, out.Skipped)
	}

	pres, _, _ := s.decks.Resolve("")
	sh := pres.Slides[idx].Shapes[added.ShapeIndex]
	if sh.Text() != "Bold part\nLinked" {
		t.Errorf("rebuilt text = %q", sh.Text())
	}
}

func TestManageText_Validate(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	res, err := s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "add",
		"slide_index": float64(idx),
		"width":       float64(4),
		"height":      float64(1),
		"text":        "Short text",
	}))
	if err != nil {
		t.Fatalf("add text: %v", err)
	}
	var added struct {
		ShapeIndex int `json:"shape_index"`
	}
	resultJSON(t, res, &added)

	res, err = s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "validate",
		"slide_index": float64(idx),
		"shape_index": float64(added.ShapeIndex),
	}))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	var fit struct {
		Fits      bool `json:"fits"`
		FontSize  int  `json:"font_size"`
		LineCount int  `json:"line_count"`
	}
	resultJSON(t, res, &fit)
	if !fit.Fits {
		t.Error("expected short text to fit a 4x1 inch box")
	}
	if fit.FontSize != 12 {
		t.Errorf("default font size = %d, want 12", fit.FontSize)
	}
	if fit.LineCount < 1 {
		t.Errorf("line count = %d, want >= 1", fit.LineCount)
	}
}

func TestManageText_ValidateFixesOverflowByDefault(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	res, err := s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "add",
		"slide_index": float64(idx),
		"width":       float64(4),
		"height":      float64(0.3),
		"text":        strings.Repeat("overflowing body copy ", 30),
	}))
	if err != nil {
		t.Fatalf("add text: %v", err)
	}
	var added struct {
		ShapeIndex int `json:"shape_index"`
	}
	resultJSON(t, res, &added)

	res, err = s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "validate",
		"slide_index": float64(idx),
		"shape_index": float64(added.ShapeIndex),
	}))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	var out struct {
		Validation struct {
			Fits     bool `json:"fits"`
			FontSize int  `json:"font_size"`
		} `json:"validation"`
		ShapesAdjusted int `json:"shapes_adjusted"`
	}
	resultJSON(t, res, &out)
	if out.Validation.Fits {
		t.Fatal("expected the long text to overflow a 4x0.3 inch box")
	}
	if out.Validation.FontSize != 12 {
		t.Errorf("validated at size %d, want the default 12", out.Validation.FontSize)
	}
	if out.ShapesAdjusted < 1 {
		t.Errorf("shapes adjusted = %d, want at least 1", out.ShapesAdjusted)
	}

	pres, _, _ := s.decks.Resolve("")
	run := pres.Slides[idx].Shapes[added.ShapeIndex].Frame.Paragraphs[0].Runs[0]
	if run.Props.Size == nil || *run.Props.Size >= 12 {
		t.Errorf("font size after fix = %v, want a shrunken value", run.Props.Size)
	}
}

func TestManageText_ValidationOnlyLeavesTextUntouched(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	res, err := s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "add",
		"slide_index": float64(idx),
		"width":       float64(4),
		"height":      float64(0.3),
		"text":        strings.Repeat("overflowing body copy ", 30),
	}))
	if err != nil {
		t.Fatalf("add text: %v", err)
	}
	var added struct {
		ShapeIndex int `json:"shape_index"`
	}
	resultJSON(t, res, &added)

	res, err = s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":       "validate",
		"slide_index":     float64(idx),
		"shape_index":     float64(added.ShapeIndex),
		"validation_only": true,
	}))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	var fit struct {
		Fits              bool `json:"fits"`
		NeedsOptimization bool `json:"needs_optimization"`
	}
	resultJSON(t, res, &fit)
	if fit.Fits {
		t.Fatal("expected overflow to be reported")
	}
	if !fit.NeedsOptimization {
		t.Error("expected needs_optimization to be set")
	}

	pres, _, _ := s.decks.Resolve("")
	run := pres.Slides[idx].Shapes[added.ShapeIndex].Frame.Paragraphs[0].Runs[0]
	if run.Props.Size != nil {
		t.Errorf("font size = %d, want untouched", *run.Props.Size)
	}
}

func TestManageText_FormatRunsRejectsImageShape(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	res, err := s.handleManageImage(context.Background(), callReq(map[string]any{
		"operation":    "add",
		"slide_index":  float64(idx),
		"source_type":  "base64",
		"image_source": pngBase64(t, 10, 10),
	}))
	if err != nil {
		t.Fatalf("add image: %v", err)
	}
	var added struct {
		ShapeIndex int `json:"shape_index"`
	}
	resultJSON(t, res, &added)

	_, err = s.handleManageText(context.Background(), callReq(map[string]any{
		"operation":   "format_runs",
		"slide_index": float64(idx),
		"shape_index": float64(added.ShapeIndex),
		"runs":        `[{"text": "Caption", "bold": true}]`,
	}))
	if err == nil {
		t.Fatal("expected error applying runs to an image shape")
	}
	if !strings.Contains(err.Error(), "no text frame") {
		t.Errorf("unexpected error: %v", err)
	}
}

// ─────────────────────────────────────────────────────────────
// manage_image
// ─────────────────────────────────────────────────────────────

func TestManageImage_Base64AddIncrementsShapeCount(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	pres, _, _ := s.decks.Resolve("")
	before := len(pres.Slides[idx].Shapes)

	_, err := s.handleManageImage(context.Background(), callReq(map[string]any{
		"operation":    "add",
		"slide_index":  float64(idx),
		"source_type":  "base64",
		"image_source": pngBase64(t, 96, 48),
		"left":         float64(1),
		"top":          float64(1),
	}))
	if err != nil {
		t.Fatalf("add image: %v", err)
	}

	after := len(pres.Slides[idx].Shapes)
	if after != before+1 {
		t.Errorf("shape count %d -> %d, want +1", before, after)
	}

	sh := pres.Slides[idx].Shapes[after-1]
	if sh.Image == "" {
		t.Fatal("expected image shape")
	}
	// 96 DPI: a 96x48 px image lands at 1.0 x 0.5 inches.
	if got := sh.Width; got != 914400 {
		t.Errorf("natural width = %d EMU, want 914400", got)
	}
	if got := sh.Height; got != 457200 {
		t.Errorf("natural height = %d EMU, want 457200", got)
	}
}

func TestManageImage_DataURIPrefixAccepted(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	_, err := s.handleManageImage(context.Background(), callReq(map[string]any{
		"operation":    "add",
		"slide_index":  float64(idx),
		"source_type":  "base64",
		"image_source": "data:image/png;base64," + pngBase64(t, 10, 10),
	}))
	if err != nil {
		t.Fatalf("add image with data URI: %v", err)
	}
}

func TestManageImage_EnhanceRejectsBase64(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	addSlideForTest(t, s, nil)

	_, err := s.handleManageImage(context.Background(), callReq(map[string]any{
		"operation":    "enhance",
		"source_type":  "base64",
		"image_source": pngBase64(t, 10, 10),
	}))
	if err == nil {
		t.Fatal("expected error enhancing a base64 source")
	}
	if !strings.Contains(err.Error(), "file source") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestManageImage_GarbageBase64Rejected(t *testing.T) {
	s := newTestServer(t)
	s.decks.Create("test")
	idx := addSlideForTest(t, s, nil)

	pres, _, _ := s.decks.Resolve("")
	before := len(pres.Slides[idx].Shapes)

	_, err := s.handleManageImage(context.Background(), callReq(map[string]any{
		"operation":    "add",
		"slide_index":  float64(idx),
		"source_type":  "base64",
		"image_source": "!!!not base64!!!",
	}))
	if err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if got := len(pres.Slides[idx].Shapes); got != before {
		t.Errorf("shape count changed on failed add: %d -> %d", before, got)
	}
}
