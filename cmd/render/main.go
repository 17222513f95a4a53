package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"settlers/internal/game"
	"settlers/internal/render"
)

func main() {
	seed := flag.Int64("seed", 1, "Board seed")
	out := flag.String("out", "board.png", "PNG output path, empty to skip")
	side := flag.Float64("side", render.DefaultOptions().Side, "Hex side in pixels")
	flag.Parse()

	board := game.NewBoard(rand.New(rand.NewSource(*seed)))
	fmt.Print(board.String())

	if *out == "" {
		return
	}

	f, err := os.Create(*out)
	if err != nil {
		slog.Error("create output", "path", *out, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	opts := render.DefaultOptions()
	opts.Side = *side
	if err := render.New(opts).WritePNG(f, board, nil); err != nil {
		slog.Error("render board", "error", err)
		os.Exit(1)
	}
	slog.Info("wrote board", "path", *out, "seed", *seed)
}
