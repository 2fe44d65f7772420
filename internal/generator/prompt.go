package generator

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a professional presentation copywriter. You write concise, ` +
	`well-structured slide content that fits the shape it is asked for. ` +
	`Respond with plain text only: no markdown, no surrounding quotes, no commentary.`

// ShapeContext describes the target shape so the model can size its answer.
type ShapeContext struct {
	Name   string
	Left   float64 // inches
	Top    float64
	Width  float64
	Height float64
}

// BuildPrompt assembles the per-shape request. section is the raw JSON of the
// outline section this slide belongs to.
func BuildPrompt(deckTitle string, section []byte, slideIndex int, sc ShapeContext) Prompt {
	var b strings.Builder
	fmt.Fprintf(&b, "Presentation: %s\n", deckTitle)
	fmt.Fprintf(&b, "Outline section (JSON):\n%s\n\n", section)
	fmt.Fprintf(&b, "Write the text for slide %d, shape %q.\n", slideIndex+1, sc.Name)
	fmt.Fprintf(&b, "The shape sits at %.1f x %.1f inches and measures %.1f x %.1f inches; keep the text short enough to fit.\n",
		sc.Left, sc.Top, sc.Width, sc.Height)
	b.WriteString("Return only the text to place in the shape.")
	return Prompt{System: systemPrompt, User: b.String()}
}
