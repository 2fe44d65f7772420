package deck

import (
	"fmt"
	"strings"

	"slidesmith/internal/domain"
)

// EMU (English Metric Unit) conversions used throughout the OOXML model.
const (
	EMUPerInch  = 914400
	EMUPerPoint = 12700
)

// Presentation is an in-memory slide deck backed by a .pptx (OPC) package.
// Parts the model does not understand are carried through save untouched.
type Presentation struct {
	Slides  []*Slide
	Layouts []*Layout

	slideWidth  int64 // EMU
	slideHeight int64

	media        []*Media
	extras       map[string][]byte // passthrough parts, keyed by zip name
	contentTypes *contentTypes
	masterParts  []string // zip names of slide masters, in rels order
	layoutParts  []string // zip names of layouts, index-aligned with Layouts
}

// Media is one embedded binary part under ppt/media/.
type Media struct {
	Name        string // base name, e.g. "image1.png"
	ContentType string
	Data        []byte
}

// Layout is a slide layout. Placeholder geometry is parsed so new slides can
// inherit it; the raw part is carried through save verbatim.
type Layout struct {
	Name         string
	Placeholders []*Shape
	raw          []byte
}

// Slide is one slide in document order.
type Slide struct {
	Layout     int // index into Presentation.Layouts
	Background *Background
	Shapes     []*Shape

	pres *Presentation
}

// Background styling for a slide. Exactly one of the fields is set.
type Background struct {
	Solid    *domain.RGB
	Gradient *Gradient
}

// Gradient is a two-stop gradient fill.
type Gradient struct {
	Start     domain.RGB
	End       domain.RGB
	Direction string // "horizontal", "vertical", "diagonal"
}

// Shape is a positioned element on a slide: a text box, a placeholder, or a
// picture. Offsets and extents are in EMU.
type Shape struct {
	Name        string
	Placeholder *Placeholder
	Frame       *TextFrame
	Image       string // media base name, empty for non-picture shapes

	Left, Top     int64
	Width, Height int64
}

// Placeholder identifies a layout-defined content region.
type Placeholder struct {
	Type  string // "title", "ctrTitle", "subTitle", "body", ...
	Index int
}

// TextFrame holds the paragraphs of a text-bearing shape.
type TextFrame struct {
	Paragraphs []*Paragraph
	WordWrap   bool
}

// Paragraph is one paragraph with optional paragraph-level font defaults.
type Paragraph struct {
	FontSize *int // points
	FontName *string
	Runs     []*Run
}

// Run is a contiguous span of text sharing one formatting set.
type Run struct {
	Text  string
	Props RunProps
}

// RunProps are the independently optional formatting attributes of a run.
type RunProps struct {
	Bold      *bool
	Italic    *bool
	Underline *bool
	Size      *int // points
	Name      *string
	Color     *domain.RGB
	Hyperlink *string
}

// GradientDirections are the accepted values for gradient backgrounds.
var GradientDirections = map[string]bool{
	"horizontal": true,
	"vertical":   true,
	"diagonal":   true,
}

// professionalSchemes are the named two-color presets for
// professional_gradient backgrounds.
var professionalSchemes = map[string][2]domain.RGB{
	"modern_blue":    {{230, 240, 255}, {30, 64, 175}},
	"corporate_gray": {{245, 245, 247}, {71, 85, 105}},
	"elegant_green":  {{236, 253, 245}, {6, 95, 70}},
	"warm_amber":     {{255, 251, 235}, {180, 83, 9}},
}

// SchemeNames returns the sorted-ish list of professional gradient presets.
func SchemeNames() []string {
	names := make([]string, 0, len(professionalSchemes))
	for n := range professionalSchemes {
		names = append(names, n)
	}
	return names
}

// SlideSize returns the deck page size in EMU.
func (p *Presentation) SlideSize() (w, h int64) {
	return p.slideWidth, p.slideHeight
}

// AddSlide appends a slide using the layout at layoutIndex. Placeholder
// shapes are copied from the layout with their geometry and left empty.
func (p *Presentation) AddSlide(layoutIndex int) (*Slide, error) {
	if layoutIndex < 0 || layoutIndex >= len(p.Layouts) {
		return nil, fmt.Errorf("layout index %d out of range 0-%d", layoutIndex, len(p.Layouts)-1)
	}
	s := &Slide{Layout: layoutIndex, pres: p}
	for _, ph := range p.Layouts[layoutIndex].Placeholders {
		s.Shapes = append(s.Shapes, &Shape{
			Name: ph.Name,
			Placeholder: &Placeholder{
				Type:  ph.Placeholder.Type,
				Index: ph.Placeholder.Index,
			},
			Frame:  &TextFrame{WordWrap: true},
			Left:   ph.Left,
			Top:    ph.Top,
			Width:  ph.Width,
			Height: ph.Height,
		})
	}
	p.Slides = append(p.Slides, s)
	return s, nil
}

// SetTitle sets the text of the slide's title placeholder, if it has one.
func (s *Slide) SetTitle(title string) bool {
	for _, sh := range s.Shapes {
		if sh.Placeholder == nil {
			continue
		}
		if sh.Placeholder.Type == "title" || sh.Placeholder.Type == "ctrTitle" {
			sh.SetText(title)
			return true
		}
	}
	return false
}

// Title returns the title placeholder text, or "".
func (s *Slide) Title() string {
	for _, sh := range s.Shapes {
		if sh.Placeholder != nil && (sh.Placeholder.Type == "title" || sh.Placeholder.Type == "ctrTitle") {
			return sh.Text()
		}
	}
	return ""
}

// PlaceholderByIdx finds a placeholder shape by its ph idx value.
func (s *Slide) PlaceholderByIdx(idx int) (*Shape, bool) {
	for _, sh := range s.Shapes {
		if sh.Placeholder != nil && sh.Placeholder.Index == idx {
			return sh, true
		}
	}
	return nil, false
}

// Placeholders returns the placeholder shapes of the slide in shape order.
func (s *Slide) Placeholders() []*Shape {
	var phs []*Shape
	for _, sh := range s.Shapes {
		if sh.Placeholder != nil {
			phs = append(phs, sh)
		}
	}
	return phs
}

// SetSolidBackground paints the slide background with a single color.
func (s *Slide) SetSolidBackground(c domain.RGB) {
	s.Background = &Background{Solid: &c}
}

// SetGradientBackground paints a two-stop gradient background.
func (s *Slide) SetGradientBackground(start, end domain.RGB, direction string) error {
	if !GradientDirections[direction] {
		return fmt.Errorf("unknown gradient direction %q", direction)
	}
	s.Background = &Background{Gradient: &Gradient{Start: start, End: end, Direction: direction}}
	return nil
}

// SetProfessionalGradient applies one of the named gradient presets.
func (s *Slide) SetProfessionalGradient(scheme, direction string) error {
	colors, ok := professionalSchemes[scheme]
	if !ok {
		return fmt.Errorf("unknown color scheme %q (have %s)", scheme, strings.Join(SchemeNames(), ", "))
	}
	return s.SetGradientBackground(colors[0], colors[1], direction)
}

// AddTextBox appends a text box shape. Position and size are in inches.
func (s *Slide) AddTextBox(left, top, width, height float64, text string) *Shape {
	sh := &Shape{
		Name:   fmt.Sprintf("TextBox %d", len(s.Shapes)+1),
		Frame:  &TextFrame{WordWrap: true},
		Left:   Inches(left),
		Top:    Inches(top),
		Width:  Inches(width),
		Height: Inches(height),
	}
	sh.SetText(text)
	s.Shapes = append(s.Shapes, sh)
	return sh
}

// AddImage appends a picture shape backed by a new media part. Position is in
// inches; a nil width or height falls back to the image's natural size at
// 96 DPI (the other dimension scales proportionally when only one is given).
func (s *Slide) AddImage(data []byte, contentType string, pxW, pxH int, left, top float64, width, height *float64) *Shape {
	name := s.pres.addMedia(data, contentType)

	natW := float64(pxW) / 96.0
	natH := float64(pxH) / 96.0
	w, h := natW, natH
	switch {
	case width != nil && height != nil:
		w, h = *width, *height
	case width != nil:
		w = *width
		if natW > 0 {
			h = natH * (*width / natW)
		}
	case height != nil:
		h = *height
		if natH > 0 {
			w = natW * (*height / natH)
		}
	}

	sh := &Shape{
		Name:   fmt.Sprintf("Picture %d", len(s.Shapes)+1),
		Image:  name,
		Left:   Inches(left),
		Top:    Inches(top),
		Width:  Inches(w),
		Height: Inches(h),
	}
	s.Shapes = append(s.Shapes, sh)
	return sh
}

func (p *Presentation) addMedia(data []byte, contentType string) string {
	ext := "png"
	switch contentType {
	case "image/jpeg":
		ext = "jpeg"
	case "image/gif":
		ext = "gif"
	}
	name := fmt.Sprintf("image%d.%s", len(p.media)+1, ext)
	p.media = append(p.media, &Media{Name: name, ContentType: contentType, Data: data})
	return name
}

// MediaByName returns the media part backing a picture shape.
func (p *Presentation) MediaByName(name string) (*Media, bool) {
	for _, m := range p.media {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// HasTextFrame reports whether the shape carries text.
func (sh *Shape) HasTextFrame() bool {
	return sh.Frame != nil
}

// Text returns the shape's text with paragraphs joined by newlines.
func (sh *Shape) Text() string {
	if sh.Frame == nil {
		return ""
	}
	var paras []string
	for _, p := range sh.Frame.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			b.WriteString(r.Text)
		}
		paras = append(paras, b.String())
	}
	return strings.Join(paras, "\n")
}

// SetText replaces the frame's content with one run per line of text.
func (sh *Shape) SetText(text string) {
	if sh.Frame == nil {
		sh.Frame = &TextFrame{WordWrap: true}
	}
	sh.Frame.Paragraphs = nil
	for _, line := range strings.Split(text, "\n") {
		sh.Frame.Paragraphs = append(sh.Frame.Paragraphs, &Paragraph{
			Runs: []*Run{{Text: line}},
		})
	}
}

// ClearText removes all paragraphs from the shape's frame.
func (sh *Shape) ClearText() {
	if sh.Frame != nil {
		sh.Frame.Paragraphs = nil
	}
}

// AppendRun adds one formatted run in its own paragraph, mirroring how
// rebuilt rich text is laid out run-by-run.
func (sh *Shape) AppendRun(r *Run) {
	if sh.Frame == nil {
		sh.Frame = &TextFrame{WordWrap: true}
	}
	sh.Frame.Paragraphs = append(sh.Frame.Paragraphs, &Paragraph{Runs: []*Run{r}})
}

// FormatOptions are the optional attributes applied by text formatting.
// Nil fields leave the corresponding property untouched.
type FormatOptions struct {
	FontSize  *int
	FontName  *string
	Bold      *bool
	Italic    *bool
	Underline *bool
	Color     *domain.RGB
}

// Format applies the options to every run of every paragraph in the frame.
func (sh *Shape) Format(opts FormatOptions) {
	if sh.Frame == nil {
		return
	}
	for _, para := range sh.Frame.Paragraphs {
		if opts.FontSize != nil {
			para.FontSize = opts.FontSize
		}
		if opts.FontName != nil {
			para.FontName = opts.FontName
		}
		for _, run := range para.Runs {
			if opts.FontSize != nil {
				run.Props.Size = opts.FontSize
			}
			if opts.FontName != nil {
				run.Props.Name = opts.FontName
			}
			if opts.Bold != nil {
				run.Props.Bold = opts.Bold
			}
			if opts.Italic != nil {
				run.Props.Italic = opts.Italic
			}
			if opts.Underline != nil {
				run.Props.Underline = opts.Underline
			}
			if opts.Color != nil {
				run.Props.Color = opts.Color
			}
		}
	}
}

// SetParagraphFont forces a paragraph-level font size and typeface on every
// paragraph of the frame, as the content generator does after filling text.
func (sh *Shape) SetParagraphFont(size int, name string) {
	if sh.Frame == nil {
		return
	}
	for _, para := range sh.Frame.Paragraphs {
		sz, n := size, name
		para.FontSize = &sz
		para.FontName = &n
	}
}

// AddBulletPoints fills a placeholder with one paragraph per bullet.
func AddBulletPoints(ph *Shape, bullets []string) {
	if ph.Frame == nil {
		ph.Frame = &TextFrame{WordWrap: true}
	}
	ph.Frame.Paragraphs = nil
	for _, b := range bullets {
		ph.Frame.Paragraphs = append(ph.Frame.Paragraphs, &Paragraph{
			Runs: []*Run{{Text: b}},
		})
	}
}

// Inches converts inches to EMU.
func Inches(v float64) int64 {
	return int64(v * EMUPerInch)
}

// ToInches converts EMU to inches.
func ToInches(v int64) float64 {
	return float64(v) / EMUPerInch
}

// SlideCount returns the number of slides in the deck.
func (p *Presentation) SlideCount() int {
	return len(p.Slides)
}

// LayoutNames returns the layout names in layout-index order.
func (p *Presentation) LayoutNames() []string {
	names := make([]string, len(p.Layouts))
	for i, l := range p.Layouts {
		names[i] = l.Name
	}
	return names
}

// SlideInfo builds the tool-facing inventory of a slide.
func (p *Presentation) SlideInfo(slideIndex int) domain.SlideInfo {
	s := p.Slides[slideIndex]
	info := domain.SlideInfo{
		SlideIndex: slideIndex,
		LayoutName: p.Layouts[s.Layout].Name,
	}
	for i, sh := range s.Shapes {
		typ := "shape"
		switch {
		case sh.Image != "":
			typ = "image"
		case sh.HasTextFrame():
			typ = "text"
		}
		preview := truncatePreview(sh.Text(), 100)
		info.Shapes = append(info.Shapes, domain.ShapeInfo{
			Index:       i,
			Name:        sh.Name,
			Type:        typ,
			Left:        ToInches(sh.Left),
			Top:         ToInches(sh.Top),
			Width:       ToInches(sh.Width),
			Height:      ToInches(sh.Height),
			TextPreview: preview,
		})
		if sh.Placeholder != nil {
			info.Placeholders = append(info.Placeholders, domain.PlaceholderInfo{
				Index: sh.Placeholder.Index,
				Type:  sh.Placeholder.Type,
				Text:  sh.Text(),
			})
		}
	}
	return info
}

// truncatePreview caps a preview at max runes so a cut never lands inside a
// multi-byte character.
func truncatePreview(s string, max int) string {
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
