package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"settlers/internal/eventlog"
)

func main() {
	dir := flag.String("dir", "data/journal", "Journal directory")
	gameID := flag.String("game", "", "Game ID to print, empty to list journals")
	flag.Parse()

	if *gameID == "" {
		files, err := eventlog.List(*dir)
		if err != nil {
			slog.Error("list journals", "dir", *dir, "error", err)
			os.Exit(1)
		}
		for _, f := range files {
			fmt.Println(strings.TrimSuffix(filepath.Base(f), ".jsonl.zst"))
		}
		return
	}

	path := filepath.Join(*dir, *gameID+".jsonl.zst")
	err := eventlog.Scan(path, func(e eventlog.Entry) error {
		player := e.PlayerID
		if player == "" {
			player = "-"
		}
		fmt.Printf("%5d %s r%-3d %-9s %-12s %-16s %s\n",
			e.Seq, e.Time.Format("15:04:05"), e.Round, e.Phase, player, e.Action, e.Payload)
		return nil
	})
	if err != nil {
		slog.Error("read journal", "path", path, "error", err)
		os.Exit(1)
	}
}
