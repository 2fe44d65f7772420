package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"slidesmith/internal/app"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "", "path to config.json (optional)")
	serve := flag.Bool("serve", false, "run the MCP server on stdin/stdout")
	outlinePath := flag.String("outline", "", "outline JSON file for one-shot content generation")
	templatePath := flag.String("template", "", "existing .pptx to fill (blank deck when omitted)")
	outputPath := flag.String("output", "generated.pptx", "where to write the generated .pptx")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// One-shot generation mode
	if *outlinePath != "" && !*serve {
		if err := app.RunGenerate(context.Background(), cfg, *templatePath, *outlinePath, *outputPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	app.ServeMCP(cfg)
}
