package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"finstat/pkg/config"
	"finstat/pkg/core/extract"
	"finstat/pkg/core/pipeline"

	"github.com/charmbracelet/glamour"
)

// openRuntime loads the configuration and wires the pipeline.
func openRuntime(ctx context.Context) (*config.Runtime, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	return cfg.Open(ctx, cfg.Logger(os.Stderr))
}

// readDocument reads a file (or stdin for "-") under the pipeline ceiling.
func readDocument(ctx context.Context, p *pipeline.Pipeline, name string) (*pipeline.Document, error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	data, err := p.ReadDocument(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &pipeline.Document{
		ID:   strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
		Data: data,
		Hint: extract.Hint{Filename: name},
	}, nil
}

// parsePair splits "current.pdf,previous.pdf" into its two paths.
func parsePair(arg string) (current, previous string, err error) {
	parts := strings.Split(arg, ",")
	switch {
	case len(parts) > 2:
		return "", "", fmt.Errorf("%q: expected current[,previous]", arg)
	case parts[0] == "":
		return "", "", fmt.Errorf("%q: missing current document", arg)
	case len(parts) == 2:
		return parts[0], parts[1], nil
	}
	return parts[0], "", nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMarkdown renders md for the terminal, falling back to plain text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(md)
}
