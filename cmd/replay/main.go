package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/inamate/whiteboard/backend-go/internal/config"
	"github.com/inamate/whiteboard/backend-go/internal/engine"
	"github.com/inamate/whiteboard/backend-go/internal/export"
	"github.com/inamate/whiteboard/backend-go/internal/replay"
)

func main() {
	boardPath := flag.String("board", "", "board JSON file (default: sample board)")
	scriptPath := flag.String("script", "", "gesture script JSON file")
	svgPath := flag.String("svg", "", "write the resulting board as SVG")
	pngPath := flag.String("png", "", "write the resulting board as PNG")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if *scriptPath == "" {
		slog.Error("missing -script")
		os.Exit(2)
	}

	eng := engine.NewEngine(cfg, logger)
	if *boardPath == "" {
		eng.LoadSampleBoard("board_sample")
	} else {
		data, err := os.ReadFile(*boardPath)
		if err != nil {
			slog.Error("read board", "path", *boardPath, "error", err)
			os.Exit(1)
		}
		if err := eng.LoadBoard(data); err != nil {
			slog.Error("load board", "path", *boardPath, "error", err)
			os.Exit(1)
		}
	}

	f, err := os.Open(*scriptPath)
	if err != nil {
		slog.Error("open script", "path", *scriptPath, "error", err)
		os.Exit(1)
	}
	script, err := replay.Load(f)
	f.Close()
	if err != nil {
		slog.Error("load script", "path", *scriptPath, "error", err)
		os.Exit(1)
	}

	batches, replayErr := replay.NewRunner(eng, logger).Run(script)
	if replayErr != nil {
		slog.Error("replay failed", "applied", len(batches), "error", replayErr)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(batches); err != nil {
		slog.Error("write batches", "error", err)
		os.Exit(1)
	}

	opts := export.Options{Padding: 16, PencilSize: cfg.PencilSize}
	if *svgPath != "" {
		res, err := export.BoardSVG(eng.Board(), opts)
		if err == nil {
			err = os.WriteFile(*svgPath, res.SVG, 0o644)
		}
		if err != nil {
			slog.Error("export svg", "path", *svgPath, "error", err)
			os.Exit(1)
		}
	}
	if *pngPath != "" {
		data, err := export.BoardPNG(eng.Board(), opts, 1)
		if err == nil {
			err = os.WriteFile(*pngPath, data, 0o644)
		}
		if err != nil {
			slog.Error("export png", "path", *pngPath, "error", err)
			os.Exit(1)
		}
	}

	slog.Info("replay complete", "batches", len(batches), "layers", eng.Board().Len())
	if replayErr != nil {
		os.Exit(1)
	}
}
