package chartutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"olxwatch/lib/pricestore"

	"github.com/stretchr/testify/require"
)

func TestRenderPriceHistory(t *testing.T) {
	now := time.Now()
	entries := []pricestore.PriceEntry{
		{Price: 100, Currency: "RON", Time: now.Add(-time.Hour)},
		{Price: 90, Currency: "RON", Time: now},
	}

	outPath := filepath.Join(t.TempDir(), "nested", "7.png")
	err := RenderPriceHistory("Product history for bike (prices in RON)", entries, outPath)
	require.NoError(t, err)

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestRenderPriceHistorySinglePoint(t *testing.T) {
	entries := []pricestore.PriceEntry{
		{Price: 100, Currency: "RON", Time: time.Now()},
	}

	outPath := filepath.Join(t.TempDir(), "7.png")
	err := RenderPriceHistory("Product history for bike (prices in RON)", entries, outPath)
	require.NoError(t, err)

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
