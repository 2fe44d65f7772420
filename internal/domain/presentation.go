package domain

// RGB is a color triple with components in 0–255.
type RGB [3]int

// Valid reports whether every component is within 0–255.
func (c RGB) Valid() bool {
	for _, v := range c {
		if v < 0 || v > 255 {
			return false
		}
	}
	return true
}

// TextRun describes one formatted span of text. Every formatting field is
// optional and applied independently; a nil field leaves the target unset.
type TextRun struct {
	Text      string  `json:"text"`
	Bold      *bool   `json:"bold,omitempty"`
	Italic    *bool   `json:"italic,omitempty"`
	Underline *bool   `json:"underline,omitempty"`
	FontSize  *int    `json:"font_size,omitempty"`
	FontName  *string `json:"font_name,omitempty"`
	Color     *RGB    `json:"color,omitempty"`
	Hyperlink *string `json:"hyperlink,omitempty"`
}

// PresentationInfo summarizes an open deck for tool responses.
type PresentationInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	FilePath    string   `json:"file_path,omitempty"`
	SlideCount  int      `json:"slide_count"`
	SlideWidth  float64  `json:"slide_width"`  // inches
	SlideHeight float64  `json:"slide_height"` // inches
	Layouts     []string `json:"layouts"`
}

// ShapeInfo describes one shape on a slide.
type ShapeInfo struct {
	Index       int     `json:"index"`
	Name        string  `json:"name,omitempty"`
	Type        string  `json:"type"` // "text", "image", "shape"
	Left        float64 `json:"left"` // inches
	Top         float64 `json:"top"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	TextPreview string  `json:"text_preview,omitempty"`
}

// PlaceholderInfo describes one placeholder region on a slide.
type PlaceholderInfo struct {
	Index int    `json:"idx"`
	Type  string `json:"type"`
	Text  string `json:"text,omitempty"`
}

// SlideInfo is the full inventory of a slide for get_slide_info.
type SlideInfo struct {
	SlideIndex   int               `json:"slide_index"`
	LayoutName   string            `json:"layout_name"`
	Shapes       []ShapeInfo       `json:"shapes"`
	Placeholders []PlaceholderInfo `json:"placeholders"`
}
