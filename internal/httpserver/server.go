// internal/httpserver/server.go
//
// HTTP server wiring for the board helper.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", GET /tiles, the lookups and the advisor.
//   - Edit endpoints (require auth when a password is set): POST /tiles,
//     POST /undo, POST /best/{kind}, POST /save.
//   - Live updates: GET /ws streams board events to every client.
//
// Notes:
//   - One board per server; every handler takes the board lock.
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - The websocket route is mounted outside the timeout middleware.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/dorfhelper/internal/game"
	"github.com/robalobadob/dorfhelper/internal/store"
	"github.com/robalobadob/dorfhelper/internal/tile"
)

// Config holds the server options.
type Config struct {
	// BoardName is the board saved and loaded from the store.
	BoardName string
	// ClientOrigin is the browser origin allowed by CORS and the websocket.
	// Defaults to http://localhost:5173.
	ClientOrigin string
	// Timeout bounds each non-streaming handler. Defaults to 10s.
	Timeout time.Duration
	Auth    AuthConfig
}

// Server bundles router, board, store and event hub.
type Server struct {
	r   *chi.Mux
	cfg Config
	hub *Hub

	mu    sync.Mutex
	board *game.Board
	store store.Store
	picks map[string]game.Pick
}

// New constructs a Server, installs middleware, and registers routes.
func New(board *game.Board, st store.Store, cfg Config) *Server {
	if cfg.ClientOrigin == "" {
		cfg.ClientOrigin = "http://localhost:5173"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	s := &Server{
		r:     chi.NewRouter(),
		cfg:   cfg,
		hub:   NewHub(cfg.ClientOrigin),
		board: board,
		store: st,
		picks: make(map[string]game.Pick),
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)        // add X-Request-ID
	s.r.Use(chimw.RealIP)           // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)        // recover from panics
	s.r.Use(cors(cfg.ClientOrigin)) // credentials-friendly CORS

	// --- live updates (no timeout) ---
	s.r.Get("/ws", s.hub.ServeHTTP)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.Timeout)) // bound handler time
		r.Use(jsonContentType)            // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"dorfhelper","endpoints":["/health","/tiles","POST /help","POST /find/tile","POST /find/candidate","/ws","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		// Read-only board endpoints
		r.Get("/tiles", s.handleTiles)
		r.Post("/find/tile", s.handleFind(false))
		r.Post("/find/candidate", s.handleFind(true))
		r.Post("/help", s.handleHelp)

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)

		// Board edits
		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth())
			r.Post("/tiles", s.handlePlace)
			r.Post("/undo", s.handleUndo)
			r.Post("/best/{kind}", s.handleBest)
			r.Post("/save", s.handleSave)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Str("board", s.cfg.BoardName).Msg("listening")
	return http.ListenAndServe(addr, s.r)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Close disconnects the websocket clients.
func (s *Server) Close() { s.hub.Close() }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------ BOARD --------------------------------------

// ringReq is the body of the lookups and the advisor.
type ringReq struct {
	Edges []tile.Edge `json:"edges"`
}

func (q ringReq) ring() (tile.Ring, error) {
	var r tile.Ring
	if len(q.Edges) != tile.Sides {
		return r, errors.Wrapf(tile.ErrBadRing, "got %d edges", len(q.Edges))
	}
	copy(r[:], q.Edges)
	return r, nil
}

// placeReq is the body of POST /tiles.
type placeReq struct {
	X int `json:"x"`
	Y int `json:"y"`
	ringReq
}

type tilesRes struct {
	Tiles    []tile.Tile `json:"tiles"`
	Count    int         `json:"count"`
	Centroid [2]float64  `json:"centroid"`
	Last     *tile.Coord `json:"last,omitempty"`
}

type findRes struct {
	Found []tile.Coord `json:"found"`
}

type helpRes struct {
	// Seen is false when no placed tile equals the tile in hand.
	Seen      bool                  `json:"seen"`
	Matches   []game.Match          `json:"matches"`
	Groups    []game.Group          `json:"groups"`
	BestValue *game.Pick            `json:"bestValue,omitempty"`
	BestMatch *game.Pick            `json:"bestMatch,omitempty"`
	FiveOfSix []game.FiveOfSixMatch `json:"fiveOfSix"`
}

type placeRes struct {
	game.Placement
	Count int `json:"count"`
}

// handleTiles lists every slot of the board.
func (s *Server) handleTiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res := tilesRes{Tiles: s.board.Tiles(), Count: s.board.Count()}
	res.Centroid[0], res.Centroid[1] = s.board.Centroid()
	if last, ok := s.board.LastPlacement(); ok {
		res.Last = &last
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, res)
}

// handleFind serves the exact (FindTile) and compatible (FindCandidate) lookups.
func (s *Server) handleFind(compatible bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body ringReq
		if !decode(w, r, &body) {
			return
		}
		ring, err := body.ring()
		if err != nil {
			writeError(w, err)
			return
		}
		s.mu.Lock()
		var found []tile.Coord
		if compatible {
			found = s.board.FindCandidate(ring)
		} else {
			found = s.board.FindTile(ring)
		}
		s.mu.Unlock()
		if found == nil {
			found = []tile.Coord{}
		}
		writeJSON(w, http.StatusOK, findRes{Found: found})
	}
}

// handleHelp runs the advisor and keeps its picks for POST /best/{kind}.
func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	var body ringReq
	if !decode(w, r, &body) {
		return
	}
	ring, err := body.ring()
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.board.HelpMe(ring)
	if err != nil {
		writeError(w, err)
		return
	}
	res := helpRes{
		Seen:      len(s.board.FindTile(ring)) > 0,
		Matches:   rec.Ranked(),
		Groups:    rec.Groups(game.ReportLimit),
		FiveOfSix: rec.FiveOfSix,
	}
	s.picks = make(map[string]game.Pick)
	if p, ok := rec.BestValue(); ok {
		s.picks["value"] = p
		res.BestValue = &p
	}
	if p, ok := rec.BestMatch(); ok {
		s.picks["match"] = p
		res.BestMatch = &p
	}
	if res.Matches == nil {
		res.Matches = []game.Match{}
	}
	if res.FiveOfSix == nil {
		res.FiveOfSix = []game.FiveOfSixMatch{}
	}
	writeJSON(w, http.StatusOK, res)
}

// handlePlace places a tile and reports the diagnostics.
func (s *Server) handlePlace(w http.ResponseWriter, r *http.Request) {
	var body placeReq
	if !decode(w, r, &body) {
		return
	}
	ring, err := body.ring()
	if err != nil {
		writeError(w, err)
		return
	}
	s.place(w, tile.New(tile.Coord{X: body.X, Y: body.Y}, ring))
}

// handleBest places the pick of the last advisor call.
func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	kind := strings.ToLower(chi.URLParam(r, "kind"))
	s.mu.Lock()
	pick, ok := s.picks[kind]
	s.mu.Unlock()
	if !ok {
		writeError(w, errors.Wrap(ErrNoPick, kind))
		return
	}
	s.place(w, pick.Tile)
}

func (s *Server) place(w http.ResponseWriter, t tile.Tile) {
	s.mu.Lock()
	p, err := s.board.PlaceTile(t, true)
	count := s.board.Count()
	if err == nil {
		s.picks = make(map[string]game.Pick)
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.Broadcast(Event{Type: eventPlaced, Pos: &p.Tile.Pos, Tile: &p.Tile, Count: count})
	writeJSON(w, http.StatusOK, placeRes{Placement: p, Count: count})
}

// handleUndo removes the last placed tile.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	pos, err := s.board.Undo()
	count := s.board.Count()
	if err == nil {
		s.picks = make(map[string]game.Pick)
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.Broadcast(Event{Type: eventUndone, Pos: &pos, Count: count})
	writeJSON(w, http.StatusOK, map[string]any{"removed": pos, "count": count})
}

// handleSave writes the board to the store.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n, err := store.SaveBoard(r.Context(), s.store, s.cfg.BoardName, s.board)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.Broadcast(Event{Type: eventSaved, Count: n})
	writeJSON(w, http.StatusOK, map[string]int{"saved": n})
}

// ------------------------------ HELPERS ------------------------------------

// ErrNoPick is returned by POST /best/{kind} before any advisor call.
var ErrNoPick = errors.New("no best tile retrieved")

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Debug().Err(err).Msg("bad request body")
		writeErrorCode(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError maps engine and store errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrEmptyEdge),
		errors.Is(err, game.ErrUnknownSlot),
		errors.Is(err, tile.ErrBadEdge),
		errors.Is(err, tile.ErrBadRing):
		code = http.StatusBadRequest
	case errors.Is(err, game.ErrSlotOccupied),
		errors.Is(err, game.ErrNothingToUndo),
		errors.Is(err, ErrNoPick),
		errors.Is(err, store.ErrReadOnly):
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeErrorCode(w, code, err.Error())
}
