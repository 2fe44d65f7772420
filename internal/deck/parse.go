package deck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"slidesmith/internal/domain"
)

// OPC relationship type URIs we care about.
const (
	relTypeSlide     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeLayout    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeMaster    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationshipSet struct {
	Rels []relationship `xml:"Relationship"`
}

func (rs *relationshipSet) byID(id string) (relationship, bool) {
	for _, r := range rs.Rels {
		if r.ID == id {
			return r, true
		}
	}
	return relationship{}, false
}

type ctDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type ctOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// contentTypes mirrors [Content_Types].xml. The original file is parsed on
// open and adjusted on save so passthrough parts keep their declarations.
type contentTypes struct {
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

func (ct *contentTypes) ensureDefault(ext, typ string) {
	for _, d := range ct.Defaults {
		if d.Extension == ext {
			return
		}
	}
	ct.Defaults = append(ct.Defaults, ctDefault{Extension: ext, ContentType: typ})
}

func (ct *contentTypes) setOverride(partName, typ string) {
	for i, o := range ct.Overrides {
		if o.PartName == partName {
			ct.Overrides[i].ContentType = typ
			return
		}
	}
	ct.Overrides = append(ct.Overrides, ctOverride{PartName: partName, ContentType: typ})
}

func (ct *contentTypes) dropOverridePrefix(prefix string) {
	kept := ct.Overrides[:0]
	for _, o := range ct.Overrides {
		if !strings.HasPrefix(o.PartName, prefix) {
			kept = append(kept, o)
		}
	}
	ct.Overrides = kept
}

// Open reads a .pptx file from disk.
func Open(filename string) (*Presentation, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return OpenBytes(data)
}

// OpenBytes reads a .pptx package from memory.
func OpenBytes(data []byte) (*Presentation, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pptx package: %w", err)
	}

	parts := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		buf, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		parts[f.Name] = buf
	}
	return fromParts(parts)
}

func fromParts(parts map[string][]byte) (*Presentation, error) {
	p := &Presentation{
		extras:      make(map[string][]byte),
		slideWidth:  12192000, // 16:9 default
		slideHeight: 6858000,
	}
	consumed := make(map[string]bool)

	// [Content_Types].xml
	ctData, ok := parts["[Content_Types].xml"]
	if !ok {
		return nil, fmt.Errorf("not a pptx package: missing [Content_Types].xml")
	}
	p.contentTypes = &contentTypes{}
	if err := decodePart(ctData, p.contentTypes); err != nil {
		return nil, fmt.Errorf("parse content types: %w", err)
	}
	consumed["[Content_Types].xml"] = true

	// Presentation part and its relationships.
	presData, ok := parts["ppt/presentation.xml"]
	if !ok {
		return nil, fmt.Errorf("not a pptx package: missing ppt/presentation.xml")
	}
	presRels := &relationshipSet{}
	if relData, ok := parts["ppt/_rels/presentation.xml.rels"]; ok {
		if err := decodePart(relData, presRels); err != nil {
			return nil, fmt.Errorf("parse presentation rels: %w", err)
		}
	}
	consumed["ppt/presentation.xml"] = true
	consumed["ppt/_rels/presentation.xml.rels"] = true

	slideIDs, size, err := parsePresentationPart(presData)
	if err != nil {
		return nil, err
	}
	if size.cx > 0 {
		p.slideWidth, p.slideHeight = size.cx, size.cy
	}
	for _, r := range presRels.Rels {
		if r.Type == relTypeMaster {
			p.masterParts = append(p.masterParts, resolveTarget("ppt", r.Target))
		}
	}

	// Layouts, sorted by part number so indices are stable.
	for name := range parts {
		if strings.HasPrefix(name, "ppt/slideLayouts/slideLayout") && strings.HasSuffix(name, ".xml") {
			p.layoutParts = append(p.layoutParts, name)
		}
	}
	sort.Slice(p.layoutParts, func(i, j int) bool {
		return layoutNumber(p.layoutParts[i]) < layoutNumber(p.layoutParts[j])
	})
	for _, name := range p.layoutParts {
		layout, err := parseLayoutPart(parts[name])
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		layout.raw = parts[name]
		p.Layouts = append(p.Layouts, layout)
		consumed[name] = true
	}
	if len(p.Layouts) == 0 {
		return nil, fmt.Errorf("pptx package has no slide layouts")
	}

	// Media parts.
	var mediaNames []string
	for name := range parts {
		if strings.HasPrefix(name, "ppt/media/") {
			mediaNames = append(mediaNames, name)
		}
	}
	sort.Strings(mediaNames)
	for _, name := range mediaNames {
		p.media = append(p.media, &Media{
			Name:        path.Base(name),
			ContentType: mediaContentType(name),
			Data:        parts[name],
		})
		consumed[name] = true
	}

	// Slides, in sldIdLst order.
	for _, rid := range slideIDs {
		rel, ok := presRels.byID(rid)
		if !ok {
			return nil, fmt.Errorf("slide relationship %s not found", rid)
		}
		partName := resolveTarget("ppt", rel.Target)
		slideData, ok := parts[partName]
		if !ok {
			return nil, fmt.Errorf("slide part %s not found", partName)
		}
		slideRels := &relationshipSet{}
		relsName := path.Join(path.Dir(partName), "_rels", path.Base(partName)+".rels")
		if relData, ok := parts[relsName]; ok {
			if err := decodePart(relData, slideRels); err != nil {
				return nil, fmt.Errorf("parse %s: %w", relsName, err)
			}
		}
		slide, err := p.parseSlidePart(slideData, slideRels)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", partName, err)
		}
		slide.pres = p
		p.Slides = append(p.Slides, slide)
		consumed[partName] = true
		consumed[relsName] = true
	}

	// Everything else is carried through save untouched.
	for name, data := range parts {
		if !consumed[name] {
			p.extras[name] = data
		}
	}
	return p, nil
}

func decodePart(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	return dec.Decode(v)
}

// resolveTarget resolves a relationship target like "slides/slide1.xml" or
// "../media/image1.png" against the directory of the source part.
func resolveTarget(baseDir, target string) string {
	return path.Clean(path.Join(baseDir, target))
}

func layoutNumber(partName string) int {
	base := strings.TrimSuffix(path.Base(partName), ".xml")
	n, _ := strconv.Atoi(strings.TrimPrefix(base, "slideLayout"))
	return n
}

func mediaContentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

type emuSize struct{ cx, cy int64 }

// parsePresentationPart extracts the ordered slide relationship IDs and the
// page size from ppt/presentation.xml.
func parsePresentationPart(data []byte) ([]string, emuSize, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var ids []string
	var size emuSize
	inSlideList := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, size, fmt.Errorf("parse presentation part: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "sldIdLst":
				inSlideList = true
			case "sldId":
				if inSlideList {
					if rid := attrByLocal(el, "id", true); rid != "" {
						ids = append(ids, rid)
					}
				}
			case "sldSz":
				size.cx = attrInt64(el, "cx")
				size.cy = attrInt64(el, "cy")
			}
		case xml.EndElement:
			if el.Name.Local == "sldIdLst" {
				inSlideList = false
			}
		}
	}
	return ids, size, nil
}

// attrByLocal returns an attribute value by local name. When namespaced is
// true, attributes carrying a namespace (like r:id) are preferred.
func attrByLocal(el xml.StartElement, local string, namespaced bool) string {
	fallback := ""
	for _, a := range el.Attr {
		if a.Name.Local != local {
			continue
		}
		hasSpace := a.Name.Space != ""
		if hasSpace == namespaced {
			return a.Value
		}
		fallback = a.Value
	}
	return fallback
}

func attrInt64(el xml.StartElement, local string) int64 {
	v, _ := strconv.ParseInt(attrByLocal(el, local, false), 10, 64)
	return v
}

// parseLayoutPart reads a slide layout: its display name and the geometry of
// its placeholder shapes. Prompt text inside layout placeholders is dropped.
func parseLayoutPart(data []byte) (*Layout, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	layout := &Layout{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "cSld":
			if name := attrByLocal(el, "name", false); name != "" {
				layout.Name = name
			}
		case "sp":
			sh, err := parseSp(dec, nil)
			if err != nil {
				return nil, err
			}
			if sh.Placeholder != nil {
				sh.ClearText()
				layout.Placeholders = append(layout.Placeholders, sh)
			}
		}
	}
	if layout.Name == "" {
		layout.Name = "Layout"
	}
	return layout, nil
}

// parseSlidePart reads one slide part into the model, resolving layout,
// image, and hyperlink relationships through the slide's rels.
func (p *Presentation) parseSlidePart(data []byte, rels *relationshipSet) (*Slide, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	s := &Slide{}
	for _, r := range rels.Rels {
		if r.Type == relTypeLayout {
			target := resolveTarget("ppt/slides", r.Target)
			for i, lp := range p.layoutParts {
				if lp == target {
					s.Layout = i
				}
			}
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "bg":
			bg, err := parseBg(dec)
			if err != nil {
				return nil, err
			}
			s.Background = bg
		case "sp":
			sh, err := parseSp(dec, rels)
			if err != nil {
				return nil, err
			}
			s.Shapes = append(s.Shapes, sh)
		case "pic":
			sh, err := parsePic(dec, rels)
			if err != nil {
				return nil, err
			}
			s.Shapes = append(s.Shapes, sh)
		}
	}
	return s, nil
}

// parseSp consumes one p:sp subtree. The decoder is positioned just past the
// sp start element; on return it is past the matching end element.
func parseSp(dec *xml.Decoder, rels *relationshipSet) (*Shape, error) {
	sh := &Shape{}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "cNvPr":
				sh.Name = attrByLocal(el, "name", false)
				depth++
			case "ph":
				typ := attrByLocal(el, "type", false)
				if typ == "" {
					typ = "body"
				}
				idx, _ := strconv.Atoi(attrByLocal(el, "idx", false))
				sh.Placeholder = &Placeholder{Type: typ, Index: idx}
				depth++
			case "off":
				sh.Left = attrInt64(el, "x")
				sh.Top = attrInt64(el, "y")
				depth++
			case "ext":
				sh.Width = attrInt64(el, "cx")
				sh.Height = attrInt64(el, "cy")
				depth++
			case "txBody":
				frame, err := parseTxBody(dec, rels)
				if err != nil {
					return nil, err
				}
				sh.Frame = frame
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return sh, nil
}

// parsePic consumes one p:pic subtree.
func parsePic(dec *xml.Decoder, rels *relationshipSet) (*Shape, error) {
	sh := &Shape{}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "cNvPr":
				sh.Name = attrByLocal(el, "name", false)
			case "blip":
				if rels != nil {
					if rel, ok := rels.byID(attrByLocal(el, "embed", true)); ok {
						sh.Image = path.Base(rel.Target)
					}
				}
			case "off":
				sh.Left = attrInt64(el, "x")
				sh.Top = attrInt64(el, "y")
			case "ext":
				sh.Width = attrInt64(el, "cx")
				sh.Height = attrInt64(el, "cy")
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return sh, nil
}

// parseTxBody consumes one txBody subtree into a TextFrame.
func parseTxBody(dec *xml.Decoder, rels *relationshipSet) (*TextFrame, error) {
	frame := &TextFrame{WordWrap: true}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "bodyPr":
				if attrByLocal(el, "wrap", false) == "none" {
					frame.WordWrap = false
				}
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "lstStyle":
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "p":
				para, err := parseParagraph(dec, rels)
				if err != nil {
					return nil, err
				}
				frame.Paragraphs = append(frame.Paragraphs, para)
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return frame, nil
}

// parseParagraph consumes one a:p subtree.
func parseParagraph(dec *xml.Decoder, rels *relationshipSet) (*Paragraph, error) {
	para := &Paragraph{}
	depth := 1
	inPPr := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "pPr":
				inPPr = true
				depth++
			case "defRPr":
				if inPPr {
					if sz := attrInt64(el, "sz"); sz > 0 {
						pt := int(sz / 100)
						para.FontSize = &pt
					}
				}
				depth++
			case "latin":
				if inPPr {
					if face := attrByLocal(el, "typeface", false); face != "" {
						para.FontName = &face
					}
				}
				depth++
			case "r":
				run, err := parseRun(dec, rels)
				if err != nil {
					return nil, err
				}
				para.Runs = append(para.Runs, run)
			default:
				depth++
			}
		case xml.EndElement:
			if el.Name.Local == "pPr" {
				inPPr = false
			}
			depth--
		}
	}
	return para, nil
}

// parseRun consumes one a:r subtree.
func parseRun(dec *xml.Decoder, rels *relationshipSet) (*Run, error) {
	run := &Run{}
	depth := 1
	inText := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "rPr":
				parseRunProps(el, &run.Props)
				depth++
			case "latin":
				if face := attrByLocal(el, "typeface", false); face != "" {
					run.Props.Name = &face
				}
				depth++
			case "srgbClr":
				if c, err := parseHexColor(attrByLocal(el, "val", false)); err == nil {
					run.Props.Color = &c
				}
				depth++
			case "hlinkClick":
				if rels != nil {
					if rel, ok := rels.byID(attrByLocal(el, "id", true)); ok {
						url := rel.Target
						run.Props.Hyperlink = &url
					}
				}
				depth++
			case "t":
				inText = true
				depth++
			default:
				depth++
			}
		case xml.EndElement:
			if el.Name.Local == "t" {
				inText = false
			}
			depth--
		case xml.CharData:
			if inText {
				run.Text += string(el)
			}
		}
	}
	return run, nil
}

func parseRunProps(el xml.StartElement, props *RunProps) {
	truth := func(v string) *bool {
		b := v == "1" || v == "true"
		return &b
	}
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "b":
			props.Bold = truth(a.Value)
		case "i":
			props.Italic = truth(a.Value)
		case "u":
			u := a.Value != "none" && a.Value != ""
			props.Underline = &u
		case "sz":
			if n, err := strconv.Atoi(a.Value); err == nil && n > 0 {
				pt := n / 100
				props.Size = &pt
			}
		}
	}
}

// parseBg consumes one p:bg subtree.
func parseBg(dec *xml.Decoder) (*Background, error) {
	bg := &Background{}
	depth := 1
	var (
		inGrad bool
		stops  []domain.RGB
		angle  int64 = -1
	)
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "gradFill":
				inGrad = true
			case "lin":
				angle = attrInt64(el, "ang")
			case "srgbClr":
				if c, err := parseHexColor(attrByLocal(el, "val", false)); err == nil {
					if inGrad {
						stops = append(stops, c)
					} else {
						bg.Solid = &c
					}
				}
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if len(stops) >= 2 {
		dir := "horizontal"
		switch angle {
		case 5400000:
			dir = "vertical"
		case 2700000:
			dir = "diagonal"
		}
		bg.Gradient = &Gradient{Start: stops[0], End: stops[len(stops)-1], Direction: dir}
		bg.Solid = nil
	}
	if bg.Solid == nil && bg.Gradient == nil {
		return nil, nil
	}
	return bg, nil
}

func parseHexColor(v string) (domain.RGB, error) {
	if len(v) != 6 {
		return domain.RGB{}, fmt.Errorf("bad color %q", v)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return domain.RGB{}, err
	}
	return domain.RGB{int(n >> 16 & 0xff), int(n >> 8 & 0xff), int(n & 0xff)}, nil
}
