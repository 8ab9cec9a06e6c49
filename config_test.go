package main

import (
	"bytes"
	"context"
	"flag"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/robalobadob/dorfhelper/internal/store"
)

func TestNewMainFlags(t *testing.T) {
	newMainFlagsTests := []struct {
		osArgs  []string
		envVars map[string]string
		check   func(m *mainFlags) bool
	}{
		{
			osArgs: []string{"dorfhelper"},
			check: func(m *mainFlags) bool {
				return m.command == commandREPL && m.storeURL == defaultStoreURL && m.boardName == defaultBoardName && m.queryTimeout == store.DefaultQueryTimeout
			},
		},
		{
			osArgs: []string{"", "-board=mine"},
			check:  func(m *mainFlags) bool { return m.command == commandREPL && m.boardName == "mine" },
		},
		{
			osArgs: []string{"", "serve"},
			check: func(m *mainFlags) bool {
				return m.port == defaultPort && m.jwtExpiresDays == defaultJWTExpiresDays && m.clientOrigin == defaultClientOrigin
			},
		},
		{
			osArgs:  []string{"", "serve"},
			envVars: map[string]string{"PORT": "8001", "LIVE_CENTROID": "true", "QUERY_TIMEOUT": "3s"},
			check:   func(m *mainFlags) bool { return m.port == 8001 && m.liveCentroid && m.queryTimeout == 3*time.Second },
		},
		{
			osArgs:  []string{"", "serve", "-port=8003"},
			envVars: map[string]string{"PORT": "8004"},
			check:   func(m *mainFlags) bool { return m.port == 8003 },
		},
		{
			osArgs:  []string{"", "serve"},
			envVars: map[string]string{"PORT": "not a number", "STORE_URL": "memory://"},
			check:   func(m *mainFlags) bool { return m.port == defaultPort && m.storeURL == "memory://" },
		},
		{
			osArgs: []string{"", "copy", "-store=sample://", "-to=memory://"},
			check:  func(m *mainFlags) bool { return m.storeURL == "sample://" && m.copyTo == "memory://" },
		},
		{
			osArgs: []string{"", "hash-password", "secret123"},
			check:  func(m *mainFlags) bool { return reflect.DeepEqual(m.args, []string{"secret123"}) },
		},
	}
	for i, test := range newMainFlagsTests {
		osLookupEnvFunc := func(key string) (string, bool) {
			v, ok := test.envVars[key]
			return v, ok
		}
		var out bytes.Buffer
		m, err := newMainFlags(test.osArgs, osLookupEnvFunc, &out)
		switch {
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case !test.check(m):
			t.Errorf("Test %v: unexpected flags: %+v", i, *m)
		}
	}
}

func TestNewMainFlagsErrors(t *testing.T) {
	noEnv := func(string) (string, bool) { return "", false }
	errTests := [][]string{
		{"", "fly"},
		{"", "copy"},
		{"", "repl", "-port=1"},
		{"", "hash-password", "-store=memory://"},
	}
	for i, osArgs := range errTests {
		var out bytes.Buffer
		if _, err := newMainFlags(osArgs, noEnv, &out); err == nil {
			t.Errorf("Test %v: wanted error for %v", i, osArgs)
		}
	}
}

func TestUsage(t *testing.T) {
	var out bytes.Buffer
	_, err := newMainFlags([]string{"", "serve", "-h"}, func(string) (string, bool) { return "", false }, &out)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("wanted flag.ErrHelp, got %v", err)
	}
	got := out.String()
	for _, want := range []string{"BOARD_PASSWORD_HASH", "-port", "Flags of serve"} {
		if !strings.Contains(got, want) {
			t.Errorf("wanted %q in usage %q", want, got)
		}
	}
}

func TestHashPassword(t *testing.T) {
	var out bytes.Buffer
	if err := hashPassword(nil, strings.NewReader("correct horse\n"), &out); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "$2a$") {
		t.Errorf("wanted bcrypt hash, got %q", out.String())
	}
	if err := hashPassword([]string{"short"}, nil, &out); err == nil {
		t.Errorf("wanted error for short password")
	}
}

func TestCopyBoard(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "copy.csv")
	m := &mainFlags{command: commandCopy, storeURL: "sample://", copyTo: "csv://" + path, boardName: defaultBoardName}
	if err := copyBoard(ctx, m); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	sample, _ := store.NewSampleStore().Load(ctx, defaultBoardName)
	copied, err := store.NewCSVStore(path).Load(ctx, defaultBoardName)
	if err != nil || len(copied) != len(sample) {
		t.Errorf("wanted %v records copied, got %v (%v)", len(sample), len(copied), err)
	}
}

func TestComplete(t *testing.T) {
	completeTests := []struct {
		line string
		want []string
	}{
		{"be", []string{"best match", "best value"}},
		{"U", []string{"undo"}},
		{"place 1", nil},
	}
	for i, test := range completeTests {
		if got := complete(test.line); !reflect.DeepEqual(test.want, got) {
			t.Errorf("Test %v: wanted %v, got %v", i, test.want, got)
		}
	}
}
