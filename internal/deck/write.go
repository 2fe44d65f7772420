package deck

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"slidesmith/internal/domain"
)

const (
	nsA    = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsP    = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsR    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsCT   = "http://schemas.openxmlformats.org/package/2006/content-types"

	ctSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctLayout       = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctMaster       = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"

	xmlHeader = "<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\"?>\n"
)

// ── write-side XML shapes ──────────────────────────────────

type wEmpty struct{}

type wRelationships struct {
	XMLName xml.Name `xml:"Relationships"`
	Xmlns   string   `xml:"xmlns,attr"`
	Rels    []wRel   `xml:"Relationship"`
}

type wRel struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

type wTypes struct {
	XMLName   xml.Name     `xml:"Types"`
	Xmlns     string       `xml:"xmlns,attr"`
	Defaults  []ctDefault  `xml:"Default"`
	Overrides []ctOverride `xml:"Override"`
}

type wSize struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

type wIDRef struct {
	ID  uint32 `xml:"id,attr"`
	RID string `xml:"r:id,attr"`
}

type wPresentation struct {
	XMLName xml.Name `xml:"p:presentation"`
	XmlnsA  string   `xml:"xmlns:a,attr"`
	XmlnsP  string   `xml:"xmlns:p,attr"`
	XmlnsR  string   `xml:"xmlns:r,attr"`
	Masters []wIDRef `xml:"p:sldMasterIdLst>p:sldMasterId"`
	Slides  []wIDRef `xml:"p:sldIdLst>p:sldId"`
	SldSz   wSize    `xml:"p:sldSz"`
	NotesSz wSize    `xml:"p:notesSz"`
}

type wSld struct {
	XMLName   xml.Name   `xml:"p:sld"`
	XmlnsA    string     `xml:"xmlns:a,attr"`
	XmlnsP    string     `xml:"xmlns:p,attr"`
	XmlnsR    string     `xml:"xmlns:r,attr"`
	CSld      wCSld      `xml:"p:cSld"`
	ClrMapOvr wClrMapOvr `xml:"p:clrMapOvr"`
}

type wClrMapOvr struct {
	Master wEmpty `xml:"a:masterClrMapping"`
}

type wCSld struct {
	Bg     *wBg    `xml:"p:bg"`
	SpTree wSpTree `xml:"p:spTree"`
}

type wBg struct {
	BgPr wBgPr `xml:"p:bgPr"`
}

type wBgPr struct {
	Fill      []byte `xml:",innerxml"`
	EffectLst wEmpty `xml:"a:effectLst"`
}

type wSolidFill struct {
	XMLName xml.Name `xml:"a:solidFill"`
	Clr     wSrgbClr `xml:"a:srgbClr"`
}

type wGradFill struct {
	XMLName xml.Name `xml:"a:gradFill"`
	Stops   []wGs    `xml:"a:gsLst>a:gs"`
	Lin     wLin     `xml:"a:lin"`
}

type wGs struct {
	Pos int      `xml:"pos,attr"`
	Clr wSrgbClr `xml:"a:srgbClr"`
}

type wLin struct {
	Ang    int64 `xml:"ang,attr"`
	Scaled int   `xml:"scaled,attr"`
}

type wSrgbClr struct {
	Val string `xml:"val,attr"`
}

type wSpTree struct {
	NvGrpSpPr wNvGrpSpPr `xml:"p:nvGrpSpPr"`
	GrpSpPr   wEmpty     `xml:"p:grpSpPr"`
	Shapes    []byte     `xml:",innerxml"`
}

type wNvGrpSpPr struct {
	CNvPr      wCNvPr `xml:"p:cNvPr"`
	CNvGrpSpPr wEmpty `xml:"p:cNvGrpSpPr"`
	NvPr       wEmpty `xml:"p:nvPr"`
}

type wCNvPr struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type wSp struct {
	XMLName xml.Name `xml:"p:sp"`
	NvSpPr  wNvSpPr  `xml:"p:nvSpPr"`
	SpPr    wSpPr    `xml:"p:spPr"`
	TxBody  *wTxBody `xml:"p:txBody"`
}

type wNvSpPr struct {
	CNvPr   wCNvPr `xml:"p:cNvPr"`
	CNvSpPr wEmpty `xml:"p:cNvSpPr"`
	NvPr    wNvPr  `xml:"p:nvPr"`
}

type wNvPr struct {
	Ph *wPh `xml:"p:ph"`
}

type wPh struct {
	Type string `xml:"type,attr,omitempty"`
	Idx  string `xml:"idx,attr,omitempty"`
}

type wSpPr struct {
	Xfrm     wXfrm     `xml:"a:xfrm"`
	PrstGeom wPrstGeom `xml:"a:prstGeom"`
}

type wXfrm struct {
	Off wOff `xml:"a:off"`
	Ext wExt `xml:"a:ext"`
}

type wOff struct {
	X int64 `xml:"x,attr"`
	Y int64 `xml:"y,attr"`
}

type wExt struct {
	CX int64 `xml:"cx,attr"`
	CY int64 `xml:"cy,attr"`
}

type wPrstGeom struct {
	Prst  string `xml:"prst,attr"`
	AvLst wEmpty `xml:"a:avLst"`
}

type wTxBody struct {
	BodyPr   wBodyPr `xml:"a:bodyPr"`
	LstStyle wEmpty  `xml:"a:lstStyle"`
	Paras    []wPara `xml:"a:p"`
}

type wBodyPr struct {
	Wrap string `xml:"wrap,attr,omitempty"`
}

type wPara struct {
	PPr  *wPPr  `xml:"a:pPr"`
	Runs []wRun `xml:"a:r"`
}

type wPPr struct {
	DefRPr *wRPr `xml:"a:defRPr"`
}

type wRun struct {
	RPr *wRPr `xml:"a:rPr"`
	T   wText `xml:"a:t"`
}

type wText struct {
	Text string `xml:",chardata"`
}

type wRPr struct {
	Lang  string      `xml:"lang,attr,omitempty"`
	Sz    int         `xml:"sz,attr,omitempty"`
	B     string      `xml:"b,attr,omitempty"`
	I     string      `xml:"i,attr,omitempty"`
	U     string      `xml:"u,attr,omitempty"`
	Fill  *wSolidFill `xml:"a:solidFill"`
	Latin *wLatin     `xml:"a:latin"`
	Hlink *wHlink     `xml:"a:hlinkClick"`
}

type wLatin struct {
	Typeface string `xml:"typeface,attr"`
}

type wHlink struct {
	RID string `xml:"r:id,attr"`
}

type wPic struct {
	XMLName  xml.Name  `xml:"p:pic"`
	NvPicPr  wNvPicPr  `xml:"p:nvPicPr"`
	BlipFill wBlipFill `xml:"p:blipFill"`
	SpPr     wSpPr     `xml:"p:spPr"`
}

type wNvPicPr struct {
	CNvPr    wCNvPr `xml:"p:cNvPr"`
	CNvPicPr wEmpty `xml:"p:cNvPicPr"`
	NvPr     wEmpty `xml:"p:nvPr"`
}

type wBlipFill struct {
	Blip    wBlip    `xml:"a:blip"`
	Stretch wStretch `xml:"a:stretch"`
}

type wBlip struct {
	Embed string `xml:"r:embed,attr"`
}

type wStretch struct {
	FillRect wEmpty `xml:"a:fillRect"`
}

// ── serialization ──────────────────────────────────────────

// SaveFile writes the deck to a .pptx file.
func (p *Presentation) SaveFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	if err := p.Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Save writes the deck as an OPC zip package. Regenerated parts are the
// content types, the presentation part and its rels, and every slide;
// layouts are carried over byte for byte, and masters, themes, and
// other unrecognized parts pass through.
func (p *Presentation) Save(w io.Writer) error {
	zw := zip.NewWriter(w)

	ct := &contentTypes{
		Defaults:  append([]ctDefault(nil), p.contentTypes.Defaults...),
		Overrides: append([]ctOverride(nil), p.contentTypes.Overrides...),
	}
	ct.ensureDefault("rels", "application/vnd.openxmlformats-package.relationships+xml")
	ct.ensureDefault("xml", "application/xml")
	ct.dropOverridePrefix("/ppt/slides/")
	ct.setOverride("/ppt/presentation.xml", ctPresentation)
	for _, m := range p.media {
		switch m.ContentType {
		case "image/jpeg":
			ct.ensureDefault("jpeg", "image/jpeg")
			ct.ensureDefault("jpg", "image/jpeg")
		case "image/gif":
			ct.ensureDefault("gif", "image/gif")
		default:
			ct.ensureDefault("png", "image/png")
		}
	}
	for i := range p.Slides {
		ct.setOverride(fmt.Sprintf("/ppt/slides/slide%d.xml", i+1), ctSlide)
	}

	// Presentation part and rels.
	presRels := wRelationships{Xmlns: nsRels}
	pres := wPresentation{
		XmlnsA:  nsA,
		XmlnsP:  nsP,
		XmlnsR:  nsR,
		SldSz:   wSize{CX: p.slideWidth, CY: p.slideHeight},
		NotesSz: wSize{CX: p.slideHeight, CY: p.slideWidth},
	}
	rid := 1
	for i, master := range p.masterParts {
		id := fmt.Sprintf("rId%d", rid)
		presRels.Rels = append(presRels.Rels, wRel{
			ID:     id,
			Type:   relTypeMaster,
			Target: strings.TrimPrefix(master, "ppt/"),
		})
		pres.Masters = append(pres.Masters, wIDRef{ID: uint32(2147483648 + i), RID: id})
		rid++
	}
	for i := range p.Slides {
		id := fmt.Sprintf("rId%d", rid)
		presRels.Rels = append(presRels.Rels, wRel{
			ID:     id,
			Type:   relTypeSlide,
			Target: fmt.Sprintf("slides/slide%d.xml", i+1),
		})
		pres.Slides = append(pres.Slides, wIDRef{ID: uint32(256 + i), RID: id})
		rid++
	}

	if err := writeXMLPart(zw, "[Content_Types].xml", wTypes{Xmlns: nsCT, Defaults: ct.Defaults, Overrides: ct.Overrides}); err != nil {
		return err
	}
	if err := writeXMLPart(zw, "ppt/presentation.xml", pres); err != nil {
		return err
	}
	if err := writeXMLPart(zw, "ppt/_rels/presentation.xml.rels", presRels); err != nil {
		return err
	}

	// Slides and their rels.
	for i, s := range p.Slides {
		data, rels, err := p.slideXML(s)
		if err != nil {
			return fmt.Errorf("serialize slide %d: %w", i, err)
		}
		if err := writeRawPart(zw, fmt.Sprintf("ppt/slides/slide%d.xml", i+1), data); err != nil {
			return err
		}
		if err := writeXMLPart(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), rels); err != nil {
			return err
		}
	}

	// Layouts round-trip verbatim; their rels ride along in extras.
	for i, name := range p.layoutParts {
		if err := writeRawPart(zw, name, p.Layouts[i].raw); err != nil {
			return err
		}
	}

	// Media.
	for _, m := range p.media {
		if err := writeRawPart(zw, "ppt/media/"+m.Name, m.Data); err != nil {
			return err
		}
	}

	// Passthrough parts.
	for name, data := range p.extras {
		if err := writeRawPart(zw, name, data); err != nil {
			return err
		}
	}

	return zw.Close()
}

func writeXMLPart(zw *zip.Writer, name string, v any) error {
	data, err := xml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return writeRawPart(zw, name, append([]byte(xmlHeader), data...))
}

func writeRawPart(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create part %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write part %s: %w", name, err)
	}
	return nil
}

// slideXML serializes one slide and builds its relationship part.
func (p *Presentation) slideXML(s *Slide) ([]byte, wRelationships, error) {
	rels := wRelationships{Xmlns: nsRels}
	layoutPart := p.layoutParts[s.Layout]
	rels.Rels = append(rels.Rels, wRel{
		ID:     "rId1",
		Type:   relTypeLayout,
		Target: "../" + strings.TrimPrefix(layoutPart, "ppt/"),
	})
	nextRel := 2
	addRel := func(typ, target, mode string) string {
		id := fmt.Sprintf("rId%d", nextRel)
		nextRel++
		rels.Rels = append(rels.Rels, wRel{ID: id, Type: typ, Target: target, TargetMode: mode})
		return id
	}

	var inner []byte
	shapeID := 2
	for _, sh := range s.Shapes {
		var (
			data []byte
			err  error
		)
		if sh.Image != "" {
			pic := wPic{
				NvPicPr: wNvPicPr{CNvPr: wCNvPr{ID: shapeID, Name: sh.Name}},
				BlipFill: wBlipFill{
					Blip: wBlip{Embed: addRel(relTypeImage, "../media/"+sh.Image, "")},
				},
				SpPr: shapeSpPr(sh),
			}
			data, err = xml.Marshal(pic)
		} else {
			sp := wSp{
				NvSpPr: wNvSpPr{CNvPr: wCNvPr{ID: shapeID, Name: sh.Name}},
				SpPr:   shapeSpPr(sh),
			}
			if sh.Placeholder != nil {
				ph := &wPh{Type: sh.Placeholder.Type}
				if sh.Placeholder.Index > 0 {
					ph.Idx = strconv.Itoa(sh.Placeholder.Index)
				}
				sp.NvSpPr.NvPr.Ph = ph
			}
			if sh.Frame != nil {
				sp.TxBody = frameXML(sh.Frame, addRel)
			}
			data, err = xml.Marshal(sp)
		}
		if err != nil {
			return nil, rels, err
		}
		inner = append(inner, data...)
		shapeID++
	}

	sld := wSld{
		XmlnsA: nsA,
		XmlnsP: nsP,
		XmlnsR: nsR,
		CSld: wCSld{
			SpTree: wSpTree{
				NvGrpSpPr: wNvGrpSpPr{CNvPr: wCNvPr{ID: 1}},
				Shapes:    inner,
			},
		},
	}
	if bg := backgroundXML(s.Background); bg != nil {
		sld.CSld.Bg = bg
	}

	data, err := xml.Marshal(sld)
	if err != nil {
		return nil, rels, err
	}
	return append([]byte(xmlHeader), data...), rels, nil
}

func shapeSpPr(sh *Shape) wSpPr {
	return wSpPr{
		Xfrm: wXfrm{
			Off: wOff{X: sh.Left, Y: sh.Top},
			Ext: wExt{CX: sh.Width, CY: sh.Height},
		},
		PrstGeom: wPrstGeom{Prst: "rect"},
	}
}

func backgroundXML(bg *Background) *wBg {
	if bg == nil {
		return nil
	}
	var fill any
	switch {
	case bg.Solid != nil:
		fill = wSolidFill{Clr: wSrgbClr{Val: hexColor(*bg.Solid)}}
	case bg.Gradient != nil:
		var ang int64
		switch bg.Gradient.Direction {
		case "vertical":
			ang = 5400000
		case "diagonal":
			ang = 2700000
		}
		fill = wGradFill{
			Stops: []wGs{
				{Pos: 0, Clr: wSrgbClr{Val: hexColor(bg.Gradient.Start)}},
				{Pos: 100000, Clr: wSrgbClr{Val: hexColor(bg.Gradient.End)}},
			},
			Lin: wLin{Ang: ang, Scaled: 1},
		}
	default:
		return nil
	}
	data, err := xml.Marshal(fill)
	if err != nil {
		return nil
	}
	return &wBg{BgPr: wBgPr{Fill: data}}
}

func frameXML(frame *TextFrame, addRel func(typ, target, mode string) string) *wTxBody {
	body := &wTxBody{}
	if !frame.WordWrap {
		body.BodyPr.Wrap = "none"
	}
	for _, para := range frame.Paragraphs {
		wp := wPara{}
		if para.FontSize != nil || para.FontName != nil {
			def := &wRPr{}
			if para.FontSize != nil {
				def.Sz = *para.FontSize * 100
			}
			if para.FontName != nil {
				def.Latin = &wLatin{Typeface: *para.FontName}
			}
			wp.PPr = &wPPr{DefRPr: def}
		}
		for _, run := range para.Runs {
			wr := wRun{T: wText{Text: run.Text}}
			if rp := runPropsXML(run.Props, addRel); rp != nil {
				wr.RPr = rp
			}
			wp.Runs = append(wp.Runs, wr)
		}
		body.Paras = append(body.Paras, wp)
	}
	return body
}

func runPropsXML(props RunProps, addRel func(typ, target, mode string) string) *wRPr {
	if props == (RunProps{}) {
		return nil
	}
	rp := &wRPr{Lang: "en-US"}
	if props.Size != nil {
		rp.Sz = *props.Size * 100
	}
	if props.Bold != nil {
		rp.B = boolAttr(*props.Bold)
	}
	if props.Italic != nil {
		rp.I = boolAttr(*props.Italic)
	}
	if props.Underline != nil {
		rp.U = "none"
		if *props.Underline {
			rp.U = "sng"
		}
	}
	if props.Color != nil {
		rp.Fill = &wSolidFill{Clr: wSrgbClr{Val: hexColor(*props.Color)}}
	}
	if props.Name != nil {
		rp.Latin = &wLatin{Typeface: *props.Name}
	}
	if props.Hyperlink != nil {
		rp.Hlink = &wHlink{RID: addRel(relTypeHyperlink, *props.Hyperlink, "External")}
	}
	return rp
}

func boolAttr(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func hexColor(c domain.RGB) string {
	return fmt.Sprintf("%02X%02X%02X", c[0], c[1], c[2])
}
