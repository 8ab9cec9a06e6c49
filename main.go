// Command dorfhelper tracks a hexagonal tile-laying board and recommends
// where to put the tile in hand, from a terminal prompt or over HTTP.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/dorfhelper/internal/game"
	"github.com/robalobadob/dorfhelper/internal/httpserver"
	"github.com/robalobadob/dorfhelper/internal/store"
)

func main() {
	_ = godotenv.Load()
	m, err := newMainFlags(os.Args, os.LookupEnv, os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupLogging(m.command, m.logLevel)

	if err := run(context.Background(), m, os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Str("command", m.command).Msg("exited")
	}
}

// setupLogging sets the global level; the prompt logs in human-readable form.
func setupLogging(command, level string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if command == commandREPL {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func run(ctx context.Context, m *mainFlags, in io.Reader, out io.Writer) error {
	switch m.command {
	case commandHashPassword:
		return hashPassword(m.args, in, out)
	case commandCopy:
		return copyBoard(ctx, m)
	}

	st, err := store.Open(ctx, m.storeURL, m.storeConfig())
	if err != nil {
		return err
	}
	defer st.Close()
	b, err := store.LoadBoard(ctx, st, m.boardName, m.gameConfig())
	if err != nil {
		return err
	}

	if m.command == commandServe {
		srv := httpserver.New(b, st, m.serverConfig())
		defer srv.Close()
		log.Info().Int("port", m.port).Str("store", m.storeURL).Msg("starting dorfhelper")
		return srv.Start(":" + strconv.Itoa(m.port))
	}
	return runREPL(ctx, b, st, m.boardName, out)
}

// copyBoard moves a board between stores, rebuilding it on the way so a
// broken board is never written.
func copyBoard(ctx context.Context, m *mainFlags) error {
	from, err := store.Open(ctx, m.storeURL, m.storeConfig())
	if err != nil {
		return errors.Wrap(err, "opening source store")
	}
	defer from.Close()
	to, err := store.Open(ctx, m.copyTo, m.storeConfig())
	if err != nil {
		return errors.Wrap(err, "opening target store")
	}
	defer to.Close()

	records, err := from.Load(ctx, m.boardName)
	if err != nil {
		return err
	}
	b, err := game.Load(records, m.gameConfig())
	if err != nil {
		return errors.Wrapf(err, "board %q", m.boardName)
	}
	n, err := store.SaveBoard(ctx, to, m.boardName, b)
	if err != nil {
		return err
	}
	log.Info().Str("from", m.storeURL).Str("to", m.copyTo).Int("tiles", n).Msg("board copied")
	return nil
}

// hashPassword prints the bcrypt hash of the password given as argument or,
// without one, on the first input line.
func hashPassword(args []string, in io.Reader, out io.Writer) error {
	var pw string
	if len(args) > 0 {
		pw = args[0]
	} else {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	hash, err := httpserver.HashPassword(pw)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hash)
	return nil
}
