package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/robalobadob/dorfhelper/internal/game"
	"github.com/robalobadob/dorfhelper/internal/store"
)

func newTestServer(t *testing.T, auth AuthConfig) (*Server, store.Store) {
	t.Helper()
	l := zerolog.Nop()
	st := store.NewMemoryStore()
	s := New(game.New(game.Config{Logger: &l}), st, Config{BoardName: "test", Auth: auth})
	t.Cleanup(s.Close)
	return s, st
}

func do(s *Server, method, path, body string, header ...string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		r.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, r)
	return w
}

const plain = `{"edges":["plain","plain","plain","plain","plain","plain"]}`

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, AuthConfig{})
	w := do(s, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Errorf("wanted ok health, got %v %q", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("wanted default CORS origin, got %q", got)
	}
	w = do(s, http.MethodGet, "/nope", "")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "not_found") {
		t.Errorf("wanted JSON 404, got %v %q", w.Code, w.Body.String())
	}
}

func TestPlaceAndTiles(t *testing.T) {
	s, _ := newTestServer(t, AuthConfig{})
	w := do(s, http.MethodPost, "/tiles", `{"x":0,"y":0,"edges":[1,1,1,1,1,1]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("wanted 200, got %v %q", w.Code, w.Body.String())
	}
	var placed struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &placed); err != nil || placed.Count != 1 {
		t.Errorf("wanted count 1, got %+v (%v)", placed, err)
	}

	w = do(s, http.MethodGet, "/tiles", "")
	var res tilesRes
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if len(res.Tiles) != 7 || res.Count != 1 || res.Last == nil {
		t.Errorf("wanted 7 slots, 1 full and a last placement, got %+v", res)
	}
}

func TestPlaceErrors(t *testing.T) {
	placeTests := []struct {
		body string
		want int
	}{
		{`{"x":0,"y":0,"edges":[1,1,1]}`, http.StatusBadRequest},
		{`{"x":0,"y":0,"edges":[1,1,1,1,1,9]}`, http.StatusBadRequest},
		{`{"x":0,"y":0,"edges":[0,1,1,1,1,1]}`, http.StatusBadRequest},
		{`{"x":5,"y":5,"edges":[1,1,1,1,1,1]}`, http.StatusBadRequest},
		{`{"x":0,"y":0,"edges":[1,1,1,1,1,1]}`, http.StatusOK},
		{`{"x":0,"y":0,"edges":[1,1,1,1,1,1]}`, http.StatusConflict},
		{`not json`, http.StatusBadRequest},
	}
	s, _ := newTestServer(t, AuthConfig{})
	for i, test := range placeTests {
		w := do(s, http.MethodPost, "/tiles", test.body)
		if w.Code != test.want {
			t.Errorf("Test %v: wanted %v, got %v %q", i, test.want, w.Code, w.Body.String())
		}
	}
}

func TestHelpAndBest(t *testing.T) {
	s, _ := newTestServer(t, AuthConfig{})
	if w := do(s, http.MethodPost, "/best/value", ""); w.Code != http.StatusConflict {
		t.Errorf("wanted 409 before help, got %v", w.Code)
	}
	do(s, http.MethodPost, "/tiles", `{"x":0,"y":0,"edges":[1,1,1,1,1,1]}`)
	do(s, http.MethodPost, "/tiles", `{"x":1,"y":0,"edges":[1,1,1,1,1,1]}`)

	w := do(s, http.MethodPost, "/help", plain)
	if w.Code != http.StatusOK {
		t.Fatalf("wanted 200, got %v %q", w.Code, w.Body.String())
	}
	var res helpRes
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if !res.Seen || len(res.Matches) != 2 || res.BestValue == nil || res.BestMatch == nil {
		t.Errorf("unexpected help response %+v", res)
	}

	w = do(s, http.MethodPost, "/best/match", "")
	if w.Code != http.StatusOK {
		t.Fatalf("wanted 200, got %v %q", w.Code, w.Body.String())
	}
	if w := do(s, http.MethodPost, "/best/match", ""); w.Code != http.StatusConflict {
		t.Errorf("picks should be cleared by a placement, got %v", w.Code)
	}
}

func TestFind(t *testing.T) {
	s, _ := newTestServer(t, AuthConfig{})
	do(s, http.MethodPost, "/tiles", `{"x":0,"y":0,"edges":["river",1,1,1,1,1]}`)
	findTests := []struct {
		path, body string
		want       int
	}{
		{"/find/tile", `{"edges":[1,1,"river",1,1,1]}`, 1},
		{"/find/tile", `{"edges":[7,7,7,7,7,7]}`, 0},
		{"/find/candidate", `{"edges":[7,7,7,7,7,7]}`, 1},
	}
	for i, test := range findTests {
		w := do(s, http.MethodPost, test.path, test.body)
		var res findRes
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Errorf("Test %v: unwanted error: %v", i, err)
			continue
		}
		if len(res.Found) != test.want {
			t.Errorf("Test %v: wanted %v found, got %v", i, test.want, res.Found)
		}
	}
}

func TestUndoAndSave(t *testing.T) {
	s, st := newTestServer(t, AuthConfig{})
	if w := do(s, http.MethodPost, "/undo", ""); w.Code != http.StatusConflict {
		t.Errorf("wanted 409 on fresh board, got %v", w.Code)
	}
	do(s, http.MethodPost, "/tiles", `{"x":0,"y":0,"edges":[1,1,1,1,1,1]}`)
	do(s, http.MethodPost, "/tiles", `{"x":1,"y":0,"edges":[1,1,1,1,1,1]}`)
	if w := do(s, http.MethodPost, "/undo", ""); w.Code != http.StatusOK {
		t.Errorf("wanted 200, got %v %q", w.Code, w.Body.String())
	}
	if w := do(s, http.MethodPost, "/save", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"saved":1`) {
		t.Errorf("wanted 1 tile saved, got %v %q", w.Code, w.Body.String())
	}
	records, err := st.Load(context.Background(), "test")
	if err != nil || len(records) != 1 {
		t.Errorf("wanted 1 stored record, got %v (%v)", records, err)
	}
}

func TestAuth(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	s, _ := newTestServer(t, AuthConfig{PasswordHash: hash, Secret: "s3cret"})
	const body = `{"x":0,"y":0,"edges":[1,1,1,1,1,1]}`
	if w := do(s, http.MethodPost, "/tiles", body); w.Code != http.StatusUnauthorized {
		t.Errorf("wanted 401 without token, got %v", w.Code)
	}
	if w := do(s, http.MethodPost, "/tiles", body, "Authorization", "Bearer junk"); w.Code != http.StatusUnauthorized {
		t.Errorf("wanted 401 with bad token, got %v", w.Code)
	}
	if w := do(s, http.MethodPost, "/auth/login", `{"password":"wrong password"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("wanted 401 with bad password, got %v", w.Code)
	}
	w := do(s, http.MethodPost, "/auth/login", `{"password":"correct horse"}`)
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("wanted token, got %q (%v)", w.Body.String(), err)
	}
	if len(w.Result().Cookies()) == 0 {
		t.Errorf("wanted auth cookie")
	}
	if w := do(s, http.MethodPost, "/tiles", body, "Authorization", "Bearer "+login.Token); w.Code != http.StatusOK {
		t.Errorf("wanted 200 with token, got %v %q", w.Code, w.Body.String())
	}
	if w := do(s, http.MethodPost, "/help", plain); w.Code != http.StatusOK {
		t.Errorf("advisor should stay public, got %v", w.Code)
	}
}

func TestHashPassword(t *testing.T) {
	for i, pw := range []string{"short", strings.Repeat("x", 73)} {
		if _, err := HashPassword(pw); err != ErrBadPassword {
			t.Errorf("Test %v: wanted ErrBadPassword, got %v", i, err)
		}
	}
}

func TestCheckOrigin(t *testing.T) {
	check := checkOrigin("http://app.example")
	originTests := []struct {
		origin, host string
		want         bool
	}{
		{"", "api.example", true},
		{"http://app.example", "api.example", true},
		{"http://api.example", "api.example", true},
		{"http://evil.example", "api.example", false},
	}
	for i, test := range originTests {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		r.Host = test.host
		if test.origin != "" {
			r.Header.Set("Origin", test.origin)
		}
		if got := check(r); got != test.want {
			t.Errorf("Test %v: wanted %v, got %v", i, test.want, got)
		}
	}
}
