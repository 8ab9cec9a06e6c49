// Package command parses and runs the text commands of the interactive
// board helper.
package command

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/robalobadob/dorfhelper/internal/tile"
)

// Line is one line typed at the prompt.
type Line struct {
	Place  *Place  `  @@`
	Hand   *Hand   `| @@`
	Query  *Query  `| @@`
	Rotate *Rotate `| @@`
	Best   *Best   `| @@`
	Simple string  `| @("undo" | "save" | "tiles" | "quit" | "exit" | "commands")`
}

// Place puts a tile on the board: "place 1 -2 plain tree 2 2 1 1" or
// "place (1, -2)" with the tile in hand.
type Place struct {
	X     int      `"place" "("? @Int ","?`
	Y     int      `@Int ")"?`
	Edges []string `@(Int | Ident)*`
}

// Hand sets (or with no edges, shows) the tile in hand.
type Hand struct {
	Edges []string `"hand" @(Int | Ident)*`
}

// Query runs the advisor ("help") or a lookup on the given edges, or on the
// tile in hand when none are given.
type Query struct {
	Verb  string   `@("help" | "find" | "candidate")`
	Edges []string `@(Int | Ident)*`
}

// Rotate turns the tile in hand, left for positive steps.
type Rotate struct {
	Steps string `"rotate" @Int?`
}

// Best places the last recommended pick of the given kind.
type Best struct {
	Kind string `"best" @("value" | "match")`
}

var lineLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "whitespace", Pattern: `[ \t\r\n]+`},
})

var lineParser = participle.MustBuild[Line](
	participle.Lexer(lineLexer),
	participle.CaseInsensitive("Ident"),
)

// Parse reads one command line.
func Parse(s string) (*Line, error) {
	l, err := lineParser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrap(err, "parsing command")
	}
	return l, nil
}

// ring converts typed edges to a ring. It returns ok=false when no edge was
// typed so the caller can fall back to the tile in hand.
func ring(fields []string) (r tile.Ring, ok bool, err error) {
	if len(fields) == 0 {
		return r, false, nil
	}
	r, err = tile.ParseRing(fields)
	return r, true, err
}

// steps returns the rotation count, 1 when omitted.
func (r *Rotate) steps() (int, error) {
	if r.Steps == "" {
		return 1, nil
	}
	return strconv.Atoi(strings.TrimPrefix(r.Steps, "+"))
}
