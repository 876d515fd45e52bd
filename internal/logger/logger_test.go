package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "PRODUCTION", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger)
	}
}

func TestNop_DiscardsAndChains(t *testing.T) {
	l := Nop().With("component", "test")
	l.Debug("debug", "k", 1)
	l.Info("info")
	l.Warn("warn", "err", "x")
	l.Error("error")
	l.Sync()
}
