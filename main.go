package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"tabula/cmd"
	"tabula/internal/db"
	"tabula/internal/server"
	"tabula/internal/source"
	"tabula/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	config, err := cmd.ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if config.ShowVersion {
		fmt.Println("tabula", version)
		return
	}

	switch config.Command {
	case cmd.CommandServe:
		err = serve(config)
	default:
		err = view(config)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serve(config *cmd.Config) error {
	database, err := db.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if config.SeedPath != "" {
		n, err := db.SeedFromFile(database, config.SeedPath)
		if err != nil {
			return err
		}
		log.Printf("seeded %d rows from %s", n, config.SeedPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewAPIServer(config.Addr, database).Run(ctx)
}

func view(config *cmd.Config) error {
	if !term.IsTerminal(os.Stdout.Fd()) {
		return errors.New("tabula needs a terminal; use \"tabula serve\" to run the backend")
	}

	// stdout belongs to the UI, so logs go to a file or nowhere.
	if config.LogPath != "" {
		f, err := tea.LogToFile(config.LogPath, "tabula")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	client := source.NewClient(config.Endpoint, config.Timeout)
	model := ui.New(ui.Options{
		Source:    client,
		Endpoint:  client.Endpoint(),
		PrefsPath: filepath.Join(config.ConfigDir, ui.PrefsFileName),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}
