package command

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/robalobadob/dorfhelper/internal/game"
	"github.com/robalobadob/dorfhelper/internal/store"
	"github.com/robalobadob/dorfhelper/internal/tile"
)

var (
	// ErrNoHand is returned by commands that need a tile in hand.
	ErrNoHand = errors.New("no tile in hand")
	// ErrNoPick is returned by "best" before any recommendation was made.
	ErrNoPick = errors.New("no best tile retrieved")
)

// listLimit is the most coordinates a lookup prints before only counting.
const listLimit = 10

// Usage lists the commands understood by Session.Exec.
const Usage = `commands:
  hand [e0 .. e5]            set or show the tile in hand
  rotate [n]                 turn the tile in hand, left for n > 0
  place x y [e0 .. e5]       place a tile, the one in hand when no edge is given
  help [e0 .. e5]            recommend slots for a tile
  best value|match           place the last recommendation
  find [e0 .. e5]            list placed tiles equal to a tile
  candidate [e0 .. e5]       list placed tiles compatible with a tile
  undo                       remove the last placed tile
  tiles                      list every slot
  save                       save the board
  quit | exit                save and leave
edges are ranks 1..8 or names: plain tree weed house river rail pond dome`

// Session runs commands against one board for one user.
type Session struct {
	board *game.Board
	store store.Store
	name  string
	out   io.Writer
	log   zerolog.Logger

	hand     *tile.Ring
	rotation int
	picks    map[string]game.Pick
}

// NewSession creates a session writing its output to out. The board is
// saved to s under name.
func NewSession(b *game.Board, s store.Store, name string, out io.Writer, log zerolog.Logger) *Session {
	return &Session{
		board: b,
		store: s,
		name:  name,
		out:   out,
		log:   log,
		picks: make(map[string]game.Pick),
	}
}

// Board returns the board the session plays on.
func (s *Session) Board() *game.Board { return s.board }

// Exec parses and runs one line. It reports quit=true once the user asked to
// leave; the board has then been saved.
func (s *Session) Exec(ctx context.Context, input string) (quit bool, err error) {
	if strings.TrimSpace(input) == "" {
		return false, nil
	}
	s.log.Debug().Str("command", input).Msg("exec")
	l, err := Parse(input)
	if err != nil {
		return false, err
	}
	switch {
	case l.Place != nil:
		return false, s.place(l.Place)
	case l.Hand != nil:
		return false, s.setHand(l.Hand.Edges)
	case l.Query != nil:
		return false, s.query(l.Query)
	case l.Rotate != nil:
		return false, s.rotate(l.Rotate)
	case l.Best != nil:
		return false, s.placeBest(strings.ToLower(l.Best.Kind))
	}
	switch strings.ToLower(l.Simple) {
	case "undo":
		return false, s.undo()
	case "save":
		return false, s.save(ctx)
	case "tiles":
		s.tiles()
		return false, nil
	case "commands":
		fmt.Fprintln(s.out, Usage)
		return false, nil
	case "quit", "exit":
		return true, s.save(ctx)
	}
	return false, errors.Errorf("unknown command %q", input)
}

// held returns the tile in hand as currently rotated.
func (s *Session) held() (tile.Ring, error) {
	if s.hand == nil {
		return tile.Ring{}, ErrNoHand
	}
	return s.hand.Rotate(s.rotation), nil
}

// take sets the hand from typed edges, or keeps it when none were typed.
func (s *Session) take(fields []string) (tile.Ring, error) {
	r, ok, err := ring(fields)
	if err != nil {
		return r, err
	}
	if ok {
		s.hand = &r
		s.rotation = 0
		return r, nil
	}
	return s.held()
}

// resetPreview drops the hand rotation and the pending picks.
func (s *Session) resetPreview() {
	s.rotation = 0
	s.picks = make(map[string]game.Pick)
}

func (s *Session) setHand(fields []string) error {
	if len(fields) == 0 {
		r, err := s.held()
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "hand: %v\n", r)
		return nil
	}
	r, err := s.take(fields)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "hand: %v\n", r)
	return nil
}

func (s *Session) rotate(r *Rotate) error {
	n, err := r.steps()
	if err != nil {
		return errors.Wrap(err, "rotate")
	}
	if s.hand == nil {
		return ErrNoHand
	}
	s.rotation = ((s.rotation+n)%tile.Sides + tile.Sides) % tile.Sides
	held, _ := s.held()
	fmt.Fprintf(s.out, "hand: %v\n", held)
	return nil
}

func (s *Session) place(p *Place) error {
	var r tile.Ring
	if len(p.Edges) == 0 {
		held, err := s.held()
		if err != nil {
			return err
		}
		r = held
	} else {
		parsed, err := tile.ParseRing(p.Edges)
		if err != nil {
			return err
		}
		r = parsed
	}
	placement, err := s.board.PlaceTile(tile.New(tile.Coord{X: p.X, Y: p.Y}, r), true)
	if err != nil {
		return err
	}
	s.printPlacement(placement)
	s.resetPreview()
	return nil
}

func (s *Session) printPlacement(p game.Placement) {
	fmt.Fprintf(s.out, "placed %v %v\n", p.Tile.Pos, p.Tile.Edges)
	for _, d := range p.Diagnostics {
		if d.Kind == game.DiagnosticMismatch {
			fmt.Fprintf(s.out, "! edge %d (%v) does not match %v of %v\n", int(d.Direction)+1, d.Edge, d.Facing, d.Pos)
		}
	}
	for _, c := range p.Closed {
		if len(c.Candidates) == 0 {
			fmt.Fprintf(s.out, "! slot %v closed but no candidate seen before\n", c.Pos)
			continue
		}
		fmt.Fprintf(s.out, "slot %v closed, %d candidates found\n", c.Pos, len(c.Candidates))
	}
}

func (s *Session) query(q *Query) error {
	r, err := s.take(q.Edges)
	if err != nil {
		return err
	}
	switch strings.ToLower(q.Verb) {
	case "find":
		s.printFound("tile", s.board.FindTile(r))
	case "candidate":
		s.printFound("candidate", s.board.FindCandidate(r))
	default:
		return s.help(r)
	}
	return nil
}

func (s *Session) printFound(what string, found []tile.Coord) {
	switch {
	case len(found) == 0:
		fmt.Fprintf(s.out, "%s not found\n", what)
	case len(found) <= listLimit:
		fmt.Fprintf(s.out, "%s found: %v\n", what, found)
	default:
		fmt.Fprintf(s.out, "%s found: %d matches\n", what, len(found))
	}
}

func (s *Session) help(r tile.Ring) error {
	s.resetPreview()
	if len(s.board.FindTile(r)) == 0 {
		fmt.Fprintln(s.out, "new tile")
	}
	rec, err := s.board.HelpMe(r)
	if err != nil {
		return err
	}
	if len(rec.Matches) == 0 {
		fmt.Fprintln(s.out, "no match")
	}
	for _, g := range rec.Groups(game.ReportLimit) {
		fmt.Fprintf(s.out, "%d neighbors (%d):\n", g.Neighbors, g.Total)
		for _, m := range g.Matches {
			fmt.Fprintf(s.out, "  V:%v E:%v %v %v\n", m.Value, m.Distance, m.Tile.Pos, m.Tile.Edges)
		}
	}
	if pick, ok := rec.BestValue(); ok {
		s.picks["value"] = pick
		s.printPick("best value", pick)
	}
	if pick, ok := rec.BestMatch(); ok {
		s.picks["match"] = pick
		s.printPick("best match", pick)
	}
	for _, f := range rec.FiveOfSix {
		fmt.Fprintf(s.out, "5/6 match: %v %v | ideal occurrences: %d\n", f.Tile.Pos, f.Tile.Edges, f.IdealOccurrences)
	}
	return nil
}

func (s *Session) printPick(label string, p game.Pick) {
	tie := ""
	if !p.Confirmed {
		tie = " (tie)"
	}
	fmt.Fprintf(s.out, "%s: M:%d V:%v %v %v%s\n", label, p.Neighbors, p.Value, p.Tile.Pos, p.Tile.Edges, tie)
}

func (s *Session) placeBest(kind string) error {
	pick, ok := s.picks[kind]
	if !ok {
		return ErrNoPick
	}
	placement, err := s.board.PlaceTile(pick.Tile, true)
	if err != nil {
		return err
	}
	s.printPlacement(placement)
	fmt.Fprintf(s.out, "best %s placed\n", kind)
	s.resetPreview()
	return nil
}

func (s *Session) undo() error {
	pos, err := s.board.Undo()
	if err != nil {
		return err
	}
	s.resetPreview()
	fmt.Fprintf(s.out, "removed %v\n", pos)
	return nil
}

func (s *Session) save(ctx context.Context) error {
	n, err := store.SaveBoard(ctx, s.store, s.name, s.board)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%d tiles saved\n", n)
	return nil
}

func (s *Session) tiles() {
	for _, t := range s.board.Tiles() {
		if t.Full() {
			fmt.Fprintf(s.out, "%v full %v\n", t.Pos, t.Edges)
			continue
		}
		fmt.Fprintf(s.out, "%v empty\n", t.Pos)
	}
	fmt.Fprintf(s.out, "%d tiles placed\n", s.board.Count())
}
