package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	newContext := func(level string) *cli.Context {
		app := &cli.App{
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
		}
		var captured *cli.Context
		app.Action = func(c *cli.Context) error {
			captured = c
			return nil
		}
		args := []string{"stratum"}
		if level != "" {
			args = append(args, "--log-level", level)
		}
		require.NoError(t, app.Run(args))
		return captured
	}

	t.Run("accepts known levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			assert.NoError(t, setupLogger(newContext(level)), "level %q", level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := setupLogger(newContext("verbose"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = parseID("")
	assert.Error(t, err)

	_, err = parseID("forty-two")
	assert.Error(t, err)

	_, err = parseID("-1")
	assert.Error(t, err)
}

func TestIngestCommandRequiresCapsule(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Action: ingestCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{Name: "capsule", Required: true},
				),
			},
		},
	}

	err := app.Run([]string{"stratum", "ingest", "--db", t.TempDir(), "notes.md"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capsule")
}
