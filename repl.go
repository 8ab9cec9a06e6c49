package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/dorfhelper/internal/command"
	"github.com/robalobadob/dorfhelper/internal/game"
	"github.com/robalobadob/dorfhelper/internal/store"
)

const historyFile = ".dorfhelper_history"

// keywords are offered by tab completion.
var keywords = []string{
	"best match", "best value", "candidate", "commands", "exit", "find", "hand",
	"help", "place", "quit", "rotate", "save", "tiles", "undo",
}

// complete returns the keywords extending the typed line.
func complete(line string) []string {
	var out []string
	lower := strings.ToLower(line)
	for _, k := range keywords {
		if strings.HasPrefix(k, lower) {
			out = append(out, k)
		}
	}
	return out
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

// runREPL reads commands until quit or end of input, then saves the board.
func runREPL(ctx context.Context, b *game.Board, st store.Store, name string, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(complete)

	if path := historyPath(); path != "" {
		if f, err := os.Open(path); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(path); err == nil {
				_, _ = line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	s := command.NewSession(b, st, name, out, log.Logger)
	fmt.Fprintf(out, "board %q: %d tiles\n", name, b.Count())
	fmt.Fprintln(out, command.Usage)
	for {
		input, err := line.Prompt("> ")
		switch {
		case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
			_, err := s.Exec(ctx, "quit")
			return err
		case err != nil:
			return err
		}
		line.AppendHistory(input)

		quit, err := s.Exec(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
}
