package common

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCommonFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterCommonFlags(fs)

	require.NoError(t, fs.Parse([]string{"-env", "test.env", "-verbose"}))
	assert.Equal(t, "test.env", *flags.EnvFile)
	assert.Equal(t, "data", *flags.DataRoot)
	assert.True(t, *flags.Verbose)
	assert.False(t, *flags.ConsoleOnly)
	assert.False(t, *flags.Version)
}

func TestFlagValidator(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	v := NewFlagValidator().
		ValidateChoice("exchange", "bybit", []string{"bybit", "binance"}).
		ValidateDirectory("data-root", t.TempDir(), true).
		ValidateDirectory("data-root", filepath.Join(t.TempDir(), "missing"), true)
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.GetError())

	v.ValidateChoice("export", "pdf", []string{"csv", "xlsx"})
	require.True(t, v.HasErrors())
	assert.EqualError(t, v.GetError(), "validation error: export must be one of [csv, xlsx], got: pdf")

	v.ValidateDirectory("data-root", file, true).ValidateDirectory("data-root", "", true)
	assert.Contains(t, v.GetError().Error(), "validation errors:\n  - ")
	assert.Contains(t, v.GetError().Error(), "data-root is required")
}

func TestUsageFormatter(t *testing.T) {
	var buf bytes.Buffer
	fs := flag.NewFlagSet("agts", flag.ContinueOnError)
	fs.SetOutput(&buf)
	RegisterCommonFlags(fs)

	u := NewUsageFormatter("agts", "market data tooling").AddExample("agts -fetch", "Fetch every configured symbol")
	fs.Usage = u.Usage(fs)
	fs.Usage()

	out := buf.String()
	assert.Contains(t, out, "agts - market data tooling")
	assert.Contains(t, out, "# Fetch every configured symbol")
	assert.Contains(t, out, "-data-root")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"BTC/USDT", "AAPL"}, SplitList(" BTC/USDT, ,AAPL,"))
	assert.Nil(t, SplitList(""))
}

func TestVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintVersion(&buf, "agts")
	assert.Contains(t, buf.String(), "agts v"+ProjectVersion)
	assert.True(t, IsDevBuild())
	assert.Contains(t, GetFullVersion(), ProjectVersion+"-dev")
	assert.Equal(t, ProjectRepo, GetVersionInfo().Repository)
}
