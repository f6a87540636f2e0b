package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/stackdoc/cmd/stackdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCommands = []string{"serve", "project", "add", "parse", "docs", "show", "edit", "export", "delete"}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, &bytes.Buffer{}),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	for _, cmd := range allCommands {
		assert.Contains(t, stdout.String(), cmd, "Help should mention %s command", cmd)
	}
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("help shows kong output", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "test.db")
		stdout := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{"--help"}, stdout, &bytes.Buffer{})

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Usage:")
		assert.Contains(t, stdout.String(), "Flags:")
	})

	t.Run("no arguments is an error", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		m.DBPath = filepath.Join(t.TempDir(), "test.db")

		err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})

		require.Error(t, err)
	})

	t.Run("creates and lists projects against sqlite", func(t *testing.T) {
		t.Parallel()

		db := filepath.Join(t.TempDir(), "test.db")

		stdout := &bytes.Buffer{}
		m := main.NewMain()
		require.NoError(t, m.Run(context.Background(), []string{"--db", db, "project", "create", "web"}, stdout, &bytes.Buffer{}))
		assert.Contains(t, stdout.String(), `Created project "web"`)

		stdout.Reset()
		m = main.NewMain()
		require.NoError(t, m.Run(context.Background(), []string{"--db", db, "project", "list"}, stdout, &bytes.Buffer{}))
		assert.Contains(t, stdout.String(), "web")
	})

	t.Run("parse requires an api key", func(t *testing.T) {
		t.Parallel()

		m := main.NewMain()
		stderr := &bytes.Buffer{}

		err := m.Run(context.Background(), []string{
			"--db", filepath.Join(t.TempDir(), "test.db"),
			"--gemini-api-key", "",
			"parse", "prisma",
		}, &bytes.Buffer{}, stderr)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "GEMINI_API_KEY")
	})
}

func TestTOML(t *testing.T) {
	t.Parallel()

	parse := func(t *testing.T, config string, args ...string) *main.CLI {
		t.Helper()

		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(config), 0o600))

		cli := &main.CLI{}
		parser, err := kong.New(cli,
			kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}),
			kong.Exit(func(int) {}),
			kong.Configuration(main.TOML, path),
		)
		require.NoError(t, err)
		_, err = parser.Parse(args)
		require.NoError(t, err)
		return cli
	}

	t.Run("sets global flags", func(t *testing.T) {
		t.Parallel()

		cli := parse(t, "model = \"gemini-2.5-pro\"\ntoken_budget = 800\ntimeout = \"30s\"\n", "project", "list")

		assert.Equal(t, "gemini-2.5-pro", cli.Model)
		assert.Equal(t, 800, cli.TokenBudget)
		assert.Equal(t, 30*time.Second, cli.Timeout)
	})

	t.Run("scopes tables to commands", func(t *testing.T) {
		t.Parallel()

		cli := parse(t, "[serve]\naddr = \":9000\"\norigins = [\"http://a.dev\", \"http://b.dev\"]\n", "serve")

		assert.Equal(t, ":9000", cli.Serve.Addr)
		assert.Equal(t, []string{"http://a.dev", "http://b.dev"}, cli.Serve.Origins)
	})

	t.Run("command line flags win", func(t *testing.T) {
		t.Parallel()

		cli := parse(t, "model = \"from-file\"\n", "--model", "from-flag", "project", "list")

		assert.Equal(t, "from-flag", cli.Model)
	})

	t.Run("rejects malformed files", func(t *testing.T) {
		t.Parallel()

		_, err := main.TOML(strings.NewReader("model = "))

		require.Error(t, err)
	})
}
