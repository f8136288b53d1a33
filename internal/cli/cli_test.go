package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/corkboard/internal/logging"
	"github.com/mesh-intelligence/corkboard/internal/trello"
	"github.com/mesh-intelligence/corkboard/pkg/corkboard"
	"github.com/mesh-intelligence/corkboard/pkg/types"
)

// cliEnv runs commands in-process against temporary config and data
// directories.
type cliEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
	trello    trello.Source
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	root := t.TempDir()
	for _, key := range envBoundKeys {
		t.Setenv(envName(key), "")
	}
	return &cliEnv{
		t:         t,
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	a := newApp()
	if e.trello != nil {
		a.newTrelloSource = func(string, string) (trello.Source, error) { return e.trello, nil }
	}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "corkboard %s\n%s", strings.Join(args, " "), out)
	return out
}

type personOut struct {
	PersonID   string   `json:"person_id"`
	FirstName  string   `json:"first_name"`
	MiddleName string   `json:"middle_name"`
	LastName   string   `json:"last_name"`
	FriendIDs  []string `json:"friend_ids"`
}

type boardOut struct {
	BoardID  string   `json:"board_id"`
	Name     string   `json:"name"`
	Statuses []string `json:"statuses"`
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func (e *cliEnv) addPerson(name ...string) personOut {
	e.t.Helper()
	args := append([]string{"--json", "person", "add"}, name...)
	return decode[personOut](e.t, e.mustRun(args...))
}

func (e *cliEnv) createBoard(name string) boardOut {
	e.t.Helper()
	return decode[boardOut](e.t, e.mustRun("--json", "board", "create", name))
}

func TestVersion(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun("version")
	assert.Contains(t, out, "corkboard v"+corkboard.Version)
	assert.NoDirExists(t, env.configDir, "version must not touch configuration")
}

func TestInit(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun("init")
	assert.Contains(t, out, "Corkboard initialized")

	data, err := os.ReadFile(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
	var cfg configFile
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, types.BackendSQLite, cfg.Backend)
	assert.Equal(t, env.dataDir, cfg.DataDir)

	for _, name := range []string{"people.jsonl", "friendships.jsonl", "boards.jsonl", "board_statuses.jsonl"} {
		assert.FileExists(t, filepath.Join(env.dataDir, name))
	}

	// A second init leaves the existing config alone.
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte("backend: sqlite\nlog_level: error\n"), 0o644))
	env.mustRun("init")
	data, err = os.ReadFile(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "log_level: error")
}

func TestPersonCommands(t *testing.T) {
	env := newCLIEnv(t)

	ada := env.addPerson("Ada", "King", "Lovelace")
	assert.Equal(t, "Ada", ada.FirstName)
	assert.Equal(t, "King", ada.MiddleName)
	assert.Equal(t, "Lovelace", ada.LastName)
	assert.Empty(t, ada.FriendIDs)

	mlk := env.addPerson("Martin Luther King Jr")
	assert.Equal(t, "King Jr", mlk.LastName)

	shown := decode[personOut](t, env.mustRun("--json", "person", "show", ada.PersonID))
	assert.Equal(t, ada.PersonID, shown.PersonID)

	list := decode[[]personOut](t, env.mustRun("--json", "person", "list"))
	assert.Len(t, list, 2)

	list = decode[[]personOut](t, env.mustRun("--json", "person", "list", "--first", "martin"))
	require.Len(t, list, 1)
	assert.Equal(t, mlk.PersonID, list[0].PersonID)

	text := env.mustRun("person", "list", "--limit", "1")
	assert.Contains(t, text, "Ada King Lovelace")

	env.mustRun("person", "delete", ada.PersonID)
	_, err := env.run("person", "show", ada.PersonID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestPersonAdd_BlankName(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("person", "add", "   ")
	require.Error(t, err)
	assert.Equal(t, "fullName cannot be an empty string", err.Error())
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestFriendCommands(t *testing.T) {
	env := newCLIEnv(t)
	ada := env.addPerson("Ada Lovelace")
	charles := env.addPerson("Charles Babbage")
	grace := env.addPerson("Grace Hopper")

	env.mustRun("friend", "add", ada.PersonID, charles.PersonID)
	env.mustRun("friend", "add", grace.PersonID, ada.PersonID)

	friends := decode[[]personOut](t, env.mustRun("--json", "friend", "list", ada.PersonID))
	assert.Len(t, friends, 2)

	friends = decode[[]personOut](t, env.mustRun("--json", "friend", "list", charles.PersonID))
	require.Len(t, friends, 1)
	assert.Equal(t, ada.PersonID, friends[0].PersonID, "friendship is mutual")

	env.mustRun("friend", "remove", charles.PersonID, ada.PersonID)
	friends = decode[[]personOut](t, env.mustRun("--json", "friend", "list", ada.PersonID))
	require.Len(t, friends, 1)
	assert.Equal(t, grace.PersonID, friends[0].PersonID)

	friends = decode[[]personOut](t, env.mustRun("--json", "person", "list", "--friend-of", grace.PersonID))
	require.Len(t, friends, 1)
	assert.Equal(t, ada.PersonID, friends[0].PersonID)

	_, err := env.run("friend", "add", ada.PersonID, ada.PersonID)
	assert.ErrorIs(t, err, errSelfFriend)
	_, err = env.run("friend", "add", ada.PersonID, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = env.run("friend", "add", ada.PersonID)
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestBoardAndStatusCommands(t *testing.T) {
	env := newCLIEnv(t)
	b := env.createBoard("Things to Do")
	assert.Equal(t, types.DefaultStatuses, b.Statuses)

	got := decode[boardOut](t, env.mustRun("--json", "status", "add", b.BoardID, "Ready"))
	assert.Equal(t, "Ready", got.Statuses[len(got.Statuses)-1])

	got = decode[boardOut](t, env.mustRun("--json", "status", "add", b.BoardID, "Ready"))
	assert.Len(t, got.Statuses, len(types.DefaultStatuses)+1, "duplicate labels are ignored")

	out := env.mustRun("status", "remove", "--async", b.BoardID, "Ready")
	assert.Contains(t, out, "4 statuses remain")

	removal := decode[statusRemoval](t, env.mustRun("--json", "status", "remove", b.BoardID, "In", "Progress"))
	assert.Equal(t, "In Progress", removal.Label)
	assert.Equal(t, 3, removal.Remaining)
	assert.NotContains(t, removal.Statuses, "In Progress")

	_, err := env.run("status", "remove", b.BoardID, "Bogus")
	assert.ErrorIs(t, err, types.ErrNotFound)

	shown := decode[boardOut](t, env.mustRun("--json", "board", "show", b.BoardID))
	assert.Equal(t, []string{types.StatusBacklog, types.StatusToDo, types.StatusDone}, shown.Statuses)

	env.createBoard("Another")
	boards := decode[[]boardOut](t, env.mustRun("--json", "board", "list", "--name", "Another"))
	assert.Len(t, boards, 1)

	env.mustRun("board", "delete", b.BoardID)
	boards = decode[[]boardOut](t, env.mustRun("--json", "board", "list"))
	assert.Len(t, boards, 1)
}

func TestYAMLOutput(t *testing.T) {
	env := newCLIEnv(t)
	b := env.createBoard("Roadmap")

	out := env.mustRun("--yaml", "board", "show", b.BoardID)
	var got struct {
		BoardID  string   `yaml:"board_id"`
		Statuses []string `yaml:"statuses"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, b.BoardID, got.BoardID)
	assert.Equal(t, types.DefaultStatuses, got.Statuses)

	_, err := env.run("--json", "--yaml", "board", "list")
	assert.Error(t, err)
}

type itemOut struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	Packed bool   `json:"packed"`
}

func TestPackingCommands(t *testing.T) {
	env := newCLIEnv(t)

	passport := decode[itemOut](t, env.mustRun("--json", "packing", "add", "Passport"))
	assert.Equal(t, "Passport", passport.Name)
	assert.False(t, passport.Packed)
	charger := decode[itemOut](t, env.mustRun("--json", "packing", "add", " USB-C", "charger "))
	assert.Equal(t, "USB-C charger", charger.Name)
	socks := decode[itemOut](t, env.mustRun("--json", "packing", "add", "Socks"))

	toggled := decode[itemOut](t, env.mustRun("--json", "packing", "toggle", charger.ItemID))
	assert.True(t, toggled.Packed)

	items := decode[[]itemOut](t, env.mustRun("--json", "packing", "list"))
	require.Len(t, items, 3)
	assert.Equal(t, []string{passport.ItemID, charger.ItemID, socks.ItemID},
		[]string{items[0].ItemID, items[1].ItemID, items[2].ItemID}, "items keep insertion order")

	packed := decode[[]itemOut](t, env.mustRun("--json", "packing", "list", "--packed"))
	require.Len(t, packed, 1)
	assert.Equal(t, charger.ItemID, packed[0].ItemID)
	unpacked := decode[[]itemOut](t, env.mustRun("--json", "packing", "list", "--unpacked"))
	assert.Len(t, unpacked, 2)

	text := env.mustRun("packing", "list")
	assert.Contains(t, text, "[x] "+charger.ItemID+"  USB-C charger")
	assert.Contains(t, text, "1 of 3 packed")

	env.mustRun("packing", "remove", passport.ItemID)
	_, err := env.run("packing", "remove", passport.ItemID)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))
	_, err = env.run("packing", "toggle", "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	out := env.mustRun("packing", "unpack-all")
	assert.Contains(t, out, "0 of 2 packed")

	_, err = env.run("packing", "add", "   ")
	assert.ErrorIs(t, err, types.ErrEmptyItemName)
	assert.Equal(t, exitUserError, exitCode(err))
	_, err = env.run("packing", "list", "--packed", "--unpacked")
	assert.Error(t, err)

	env.mustRun("packing", "clear")
	assert.Contains(t, env.mustRun("packing", "list"), "No items found.")
	assert.FileExists(t, filepath.Join(env.dataDir, "packing_items.jsonl"))
}

type fakeTrello map[string]*trello.Board

func (f fakeTrello) FetchBoard(id string) (*trello.Board, error) {
	if b, ok := f[id]; ok {
		return b, nil
	}
	return nil, types.ErrNotFound
}

func TestBoardImportTrello(t *testing.T) {
	env := newCLIEnv(t)
	env.trello = fakeTrello{"tb1": {
		Name:    "Launch",
		Lists:   []string{"Ideas", "Doing", "Shipped"},
		Members: []string{"Grace Hopper", "Alan Turing"},
	}}

	b := decode[boardOut](t, env.mustRun("--json", "board", "import-trello", "--members", "tb1"))
	assert.Equal(t, "Launch", b.Name)
	assert.Equal(t, []string{"Ideas", "Doing", "Shipped"}, b.Statuses)

	people := decode[[]personOut](t, env.mustRun("--json", "person", "list"))
	assert.Len(t, people, 2)
}

func TestBoardImportTrello_MissingCredentials(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("board", "import-trello", "tb1")
	assert.ErrorIs(t, err, trello.ErrMissingCredentials)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestSnapshotCommands(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("CORKBOARD_SNAPSHOT_AUTHOR_NAME", "Tester")

	env.addPerson("Ada Lovelace")
	out := env.mustRun("snapshot", "-m", "first people")
	assert.Contains(t, out, "Snapshot ")

	out = env.mustRun("snapshot")
	assert.Contains(t, out, "Nothing to snapshot.")

	out = env.mustRun("snapshot", "log")
	assert.Contains(t, out, "Tester")
	assert.Contains(t, out, "first people")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"not found", types.ErrNotFound, exitUserError},
		{"invalid argument", types.ErrEmptyFullName, exitUserError},
		{"wrapped invalid id", errors.Join(errors.New("ctx"), types.ErrInvalidID), exitUserError},
		{"system", systemError(errors.New("disk full")), exitSysError},
		{"system wrapping not found", systemError(types.ErrNotFound), exitUserError},
		{"usage", usageError(errors.New("bad flag")), exitUserError},
		{"untagged", errors.New("unknown command"), exitUserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

// setupApp returns an app configured against env's directories, as
// PersistentPreRunE leaves it for a subcommand.
func (e *cliEnv) setupApp() *app {
	e.t.Helper()
	a := newApp()
	a.flags.configDir = e.configDir
	a.flags.dataDir = e.dataDir
	require.NoError(e.t, a.setup(&cobra.Command{Use: "board"}, nil))
	return a
}

func TestWithTable_ErrorClassification(t *testing.T) {
	env := newCLIEnv(t)
	a := env.setupApp()

	err := a.withTable(types.BoardsTable, func(types.Table) error {
		return fmt.Errorf("board b1: %w", types.ErrNotFound)
	})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))

	err = a.withTable(types.BoardsTable, func(types.Table) error {
		return usageError(errSelfFriend)
	})
	assert.Equal(t, exitUserError, exitCode(err))

	err = a.withTable(types.BoardsTable, func(tbl types.Table) error {
		// A non-empty directory in place of boards.jsonl makes the
		// persist rename fail.
		path := filepath.Join(env.dataDir, "boards.jsonl")
		require.NoError(t, os.Remove(path))
		require.NoError(t, os.MkdirAll(filepath.Join(path, "held"), 0o755))
		_, err := tbl.Set("", types.NewKanbanBoard("Doomed"))
		return err
	})
	require.Error(t, err)
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	notFound := fmt.Errorf("person p1: %w", types.ErrNotFound)
	assert.Same(t, notFound, classify(notFound))

	usage := usageError(errors.New("bad flag"))
	assert.Same(t, usage, classify(usage))

	err := classify(errors.New("persisting boards.jsonl: renaming temp file"))
	assert.Equal(t, exitSysError, exitCode(err))
}

func TestSetup_LogLevelFromEnvironment(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	env := newCLIEnv(t)
	t.Setenv(logging.EnvLevel, "debug")
	env.setupApp()
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))

	t.Setenv(logging.EnvLevel, "")
	env.setupApp()
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))

	a := newApp()
	a.flags.configDir = env.configDir
	a.flags.dataDir = env.dataDir
	a.flags.logLevel = "error"
	t.Setenv(logging.EnvLevel, "debug")
	require.NoError(t, a.setup(&cobra.Command{Use: "board"}, nil))
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelWarn), "flag wins over LOG_LEVEL")
}

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"version"}, &stdout, &stderr)
	assert.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout.String(), corkboard.ModulePath)

	stdout.Reset()
	code = run([]string{"no-such-command"}, &stdout, &stderr)
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr.String(), "Error:")
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "CORKBOARD_TRELLO_API_KEY", envName(cfgKeyTrelloAPIKey))
	assert.Equal(t, "CORKBOARD_LOG_LEVEL", envName(cfgKeyLogLevel))
}
