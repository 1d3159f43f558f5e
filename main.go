package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/streakr/internal/config"
	"github.com/sadopc/streakr/internal/points"
	"github.com/sadopc/streakr/internal/store"
	"github.com/sadopc/streakr/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	// The alt screen owns stdout, so logs go to a file.
	f, err := tea.LogToFile(cfg.LogFile, "streakr")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if cfg.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	log.Printf("starting with db %s", cfg.DBPath)

	svc := points.NewService(s)
	app := tui.NewApp(s, svc, cfg.ExportDir)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
