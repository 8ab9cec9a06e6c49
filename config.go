package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/robalobadob/dorfhelper/internal/game"
	"github.com/robalobadob/dorfhelper/internal/httpserver"
	"github.com/robalobadob/dorfhelper/internal/store"
)

const (
	environmentVariablePort           = "PORT"
	environmentVariableLogLevel       = "LOG_LEVEL"
	environmentVariableStoreURL       = "STORE_URL"
	environmentVariableBoardName      = "BOARD_NAME"
	environmentVariableJWTSecret      = "JWT_SECRET"
	environmentVariableJWTExpiresDays = "JWT_EXPIRES_DAYS"
	environmentVariablePasswordHash   = "BOARD_PASSWORD_HASH"
	environmentVariableCookieName     = "COOKIE_NAME"
	environmentVariableSecureCookie   = "SECURE_COOKIE"
	environmentVariableClientOrigin   = "CLIENT_ORIGIN"
	environmentVariableLiveCentroid   = "LIVE_CENTROID"
	environmentVariableQueryTimeout   = "QUERY_TIMEOUT"
)

const (
	commandServe        = "serve"
	commandREPL         = "repl"
	commandCopy         = "copy"
	commandHashPassword = "hash-password"
)

const (
	defaultPort           = 5175
	defaultStoreURL       = "csv://DATA.csv"
	defaultBoardName      = "default"
	defaultJWTExpiresDays = 14
	defaultClientOrigin   = "http://localhost:5173"
)

// errUnknownCommand is returned for a first argument that names no subcommand.
var errUnknownCommand = errors.New("unknown command")

// mainFlags are the configuration options which can be easily configured at run startup for different environments.
type mainFlags struct {
	command      string
	args         []string
	port         int
	logLevel     string
	storeURL     string
	copyTo       string
	boardName    string
	liveCentroid bool
	queryTimeout time.Duration

	jwtSecret      string
	jwtExpiresDays int
	passwordHash   string
	cookieName     string
	secureCookie   bool
	clientOrigin   string
}

// usage prints how to run a subcommand to the flagset's output.
func usage(fs *flag.FlagSet, envVars []string) {
	fmt.Fprintf(fs.Output(), "Usage: dorfhelper [%s] [flags]\n", strings.Join([]string{commandREPL, commandServe, commandCopy, commandHashPassword}, "|"))
	fmt.Fprintf(fs.Output(), "Reads environment variables when possible: [%s]\n", strings.Join(envVars, ","))
	fmt.Fprintf(fs.Output(), "Flags of %s:\n", fs.Name())
	fs.PrintDefaults()
}

// newFlagSet creates a flagSet for the subcommand that populates the specified mainFlags.
func (m *mainFlags) newFlagSet(command string, osLookupEnvFunc func(string) (string, bool), output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.SetOutput(output)
	envValue := func(key, defaultValue string) string {
		if envValue, ok := osLookupEnvFunc(key); ok && envValue != "" {
			return envValue
		}
		return defaultValue
	}
	envValueInt := func(key string, defaultValue int) int {
		v, err := strconv.Atoi(envValue(key, ""))
		if err != nil {
			return defaultValue
		}
		return v
	}
	envValueBool := func(key string) bool {
		v, _ := strconv.ParseBool(envValue(key, ""))
		return v
	}
	envValueDuration := func(key string, defaultValue time.Duration) time.Duration {
		v, err := time.ParseDuration(envValue(key, ""))
		if err != nil {
			return defaultValue
		}
		return v
	}

	envVars := []string{environmentVariableLogLevel}
	fs.StringVar(&m.logLevel, "log-level", envValue(environmentVariableLogLevel, "info"), "The minimum level of logged messages (trace, debug, info, warn, error).")
	if command != commandHashPassword {
		envVars = append(envVars, environmentVariableStoreURL, environmentVariableBoardName, environmentVariableLiveCentroid, environmentVariableQueryTimeout)
		fs.StringVar(&m.storeURL, "store", envValue(environmentVariableStoreURL, defaultStoreURL), "The URL of the board store: memory://, sample://, csv://path, sqlite://path, postgres://..., mongodb://..., firestore://project or badger://dir.")
		fs.StringVar(&m.boardName, "board", envValue(environmentVariableBoardName, defaultBoardName), "The name of the board in the store.")
		fs.BoolVar(&m.liveCentroid, "live-centroid", envValueBool(environmentVariableLiveCentroid), "Recomputes the board centroid after every placement instead of only on load.")
		fs.DurationVar(&m.queryTimeout, "query-timeout", envValueDuration(environmentVariableQueryTimeout, store.DefaultQueryTimeout), "The maximum time of one store round trip.")
	}
	switch command {
	case commandServe:
		envVars = append(envVars, environmentVariablePort, environmentVariableClientOrigin, environmentVariablePasswordHash,
			environmentVariableJWTSecret, environmentVariableJWTExpiresDays, environmentVariableCookieName, environmentVariableSecureCookie)
		fs.IntVar(&m.port, "port", envValueInt(environmentVariablePort, defaultPort), "The TCP port for http requests.")
		fs.StringVar(&m.clientOrigin, "client-origin", envValue(environmentVariableClientOrigin, defaultClientOrigin), "The browser origin allowed to call the server.")
		fs.StringVar(&m.passwordHash, "password-hash", envValue(environmentVariablePasswordHash, ""), "The bcrypt hash of the password needed to change the board.  Empty lets anyone change it.")
		fs.StringVar(&m.jwtSecret, "jwt-secret", envValue(environmentVariableJWTSecret, ""), "The secret used to sign login tokens.")
		fs.IntVar(&m.jwtExpiresDays, "jwt-expires-days", envValueInt(environmentVariableJWTExpiresDays, defaultJWTExpiresDays), "The number of days a login lasts.")
		fs.StringVar(&m.cookieName, "cookie-name", envValue(environmentVariableCookieName, ""), "The name of the login cookie.")
		fs.BoolVar(&m.secureCookie, "secure-cookie", envValueBool(environmentVariableSecureCookie), "Marks the login cookie Secure and SameSite=None.")
	case commandCopy:
		fs.StringVar(&m.copyTo, "to", "", "The URL of the store to copy the board to.")
	}
	fs.Usage = func() {
		usage(fs, envVars) // [lazy evaluation]
	}
	return fs
}

// newMainFlags creates a new, populated mainFlags structure.
// The first argument names the subcommand, repl when omitted.
// If fields are not specified on the command line, environment variable values are used before defaulting to other defaults.
func newMainFlags(osArgs []string, osLookupEnvFunc func(string) (string, bool), output io.Writer) (*mainFlags, error) {
	if len(osArgs) == 0 {
		osArgs = []string{""}
	}
	programArgs := osArgs[1:]
	m := mainFlags{command: commandREPL}
	if len(programArgs) > 0 && !strings.HasPrefix(programArgs[0], "-") {
		m.command = programArgs[0]
		programArgs = programArgs[1:]
	}
	switch m.command {
	case commandServe, commandREPL, commandCopy, commandHashPassword:
	default:
		return nil, errors.Wrapf(errUnknownCommand, "%q", m.command)
	}
	fs := m.newFlagSet(m.command, osLookupEnvFunc, output)
	if err := fs.Parse(programArgs); err != nil {
		return nil, err
	}
	m.args = fs.Args()
	if m.command == commandCopy && m.copyTo == "" {
		return nil, errors.New("copy needs -to")
	}
	return &m, nil
}

func (m mainFlags) gameConfig() game.Config {
	return game.Config{LiveCentroid: m.liveCentroid}
}

func (m mainFlags) storeConfig() store.Config {
	return store.Config{QueryTimeout: m.queryTimeout}
}

func (m mainFlags) serverConfig() httpserver.Config {
	return httpserver.Config{
		BoardName:    m.boardName,
		ClientOrigin: m.clientOrigin,
		Auth: httpserver.AuthConfig{
			PasswordHash: m.passwordHash,
			Secret:       m.jwtSecret,
			ExpiresDays:  m.jwtExpiresDays,
			CookieName:   m.cookieName,
			SecureCookie: m.secureCookie,
		},
	}
}
