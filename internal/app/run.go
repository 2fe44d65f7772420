package app

import (
	"context"
	"fmt"
	"log"

	"slidesmith/internal/deck"
	"slidesmith/internal/domain"
	"slidesmith/internal/generator"
	mcpserver "slidesmith/internal/mcp"
	"slidesmith/internal/service"
	"slidesmith/internal/storage"
)

// ServeMCP runs the process as a standalone MCP server on stdin/stdout.
// It initializes storage and services and serves until interrupted.
func ServeMCP(cfg *Config) {
	db, err := storage.New(cfg.DBPath, cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	decks := service.NewDeckService(storage.NewDeckStore(db), db.DataDir())

	llm, err := cfg.BuildLLM()
	if err != nil {
		log.Fatalf("Failed to configure language model: %v", err)
	}
	if llm == nil {
		log.Println("[MCP] No model credentials found; generate_content_from_outline will be unavailable")
	}

	mcpSrv := mcpserver.New(mcpserver.Deps{
		Decks: decks,
		LLM:   llm,
		Model: cfg.Model(),
	})

	log.Println("[MCP] Starting standalone stdio server...")
	if err := mcpSrv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}

// RunGenerate is the one-shot CLI path: load an outline, fill a deck with
// generated content, and write the result to outputPath. When templatePath
// is empty a blank deck is created with one content slide per outline
// section block.
func RunGenerate(ctx context.Context, cfg *Config, templatePath, outlinePath, outputPath string) error {
	outline, err := domain.LoadOutline(outlinePath)
	if err != nil {
		return err
	}

	var pres *deck.Presentation
	if templatePath != "" {
		pres, err = deck.Open(templatePath)
		if err != nil {
			return err
		}
	} else {
		pres = deck.New()
		total := domain.SlidesPerSection * len(outline.Sections)
		for i := 0; i < total; i++ {
			layout := 1
			if i == 0 {
				layout = 0 // opening slide uses the title layout
			}
			if _, err := pres.AddSlide(layout); err != nil {
				return err
			}
		}
		pres.Slides[0].SetTitle(outline.Title)
	}
	if pres.SlideCount() == 0 {
		return fmt.Errorf("template %s has no slides to fill", templatePath)
	}

	llm, err := cfg.BuildLLM()
	if err != nil {
		return err
	}
	if llm == nil {
		return fmt.Errorf("no model credentials: set llm.api_key in the config or OPENAI_API_KEY")
	}

	rep, err := generator.FromOutline(ctx, pres, outline, llm)
	if err != nil {
		return err
	}
	if err := pres.SaveFile(outputPath); err != nil {
		return err
	}

	log.Printf("Filled %d/%d slides, wrote %s", rep.SlidesFilled, rep.SlidesTotal, outputPath)
	return nil
}
