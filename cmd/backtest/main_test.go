package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// captureApp 替换各子命令的 Action，只记录解析结果。
func captureApp(got map[string]string) *cli.App {
	app := newApp()
	for _, cmd := range app.Commands {
		cmd.Action = func(c *cli.Context) error {
			got["command"] = c.Command.Name
			got["config"] = c.String("config")
			got["bars"] = c.String("bars")
			got["out"] = c.String("out")
			return nil
		}
	}
	return app
}

func TestSubcommandFlagsParse(t *testing.T) {
	got := map[string]string{}
	err := captureApp(got).Run([]string{"backtest", "run", "--config", "c.yaml", "--bars", "bars.csv", "--trades", "t.csv"})
	require.NoError(t, err)
	assert.Equal(t, "run", got["command"])
	assert.Equal(t, "c.yaml", got["config"])
	assert.Equal(t, "bars.csv", got["bars"])

	got = map[string]string{}
	err = captureApp(got).Run([]string{"backtest", "sweep", "-c", "s.yaml", "-b", "b.csv", "--out", "sweep.csv"})
	require.NoError(t, err)
	assert.Equal(t, "sweep", got["command"])
	assert.Equal(t, "s.yaml", got["config"])
	assert.Equal(t, "b.csv", got["bars"])
	assert.Equal(t, "sweep.csv", got["out"])
}

func TestBarsFlagRequired(t *testing.T) {
	got := map[string]string{}
	err := captureApp(got).Run([]string{"backtest", "run", "--config", "c.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bars")
	assert.Empty(t, got)
}

func TestConfigFlagDefault(t *testing.T) {
	got := map[string]string{}
	require.NoError(t, captureApp(got).Run([]string{"backtest", "sweep", "--bars", "b.csv"}))
	assert.Equal(t, "configs/config.yaml", got["config"])
}
