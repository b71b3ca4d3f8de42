package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spots.csv"), []byte("ticker,price\nSPY,581.39\n"), 0644))

	tests := []struct {
		name string
		opts Options
		want float64
	}{
		{"static", Options{Kind: "static", Spot: 100}, 100},
		{"default kind", Options{Spot: 42}, 42},
		{"local hit", Options{Kind: "local", DataDir: dir, Spot: 1}, 581.39},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov, err := NewProvider(tt.opts)
			require.NoError(t, err)

			spot, err := prov.GetSpot(context.Background(), "SPY")
			require.NoError(t, err)
			assert.Equal(t, tt.want, spot)
		})
	}

	_, err := NewProvider(Options{Kind: "bloomberg"})
	assert.Error(t, err)

	prov, err := NewProvider(Options{Kind: "massive", APIKey: "k", Spot: 1})
	require.NoError(t, err)
	assert.NotNil(t, prov.Secondary())

	prov, err = NewProvider(Options{Kind: "massive", APIKey: "k"})
	require.NoError(t, err)
	assert.Nil(t, prov.Secondary())
}

func TestNewProvider_MassiveFailureWithoutSpotSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"unknown api key"}`))
	}))
	defer srv.Close()

	tests := []struct {
		name    string
		spot    float64
		want    float64
		wantErr bool
	}{
		{"no configured spot", 0, 0, true},
		{"configured spot", 120, 120, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prov, err := NewProvider(Options{Kind: "massive", APIKey: "bad", Spot: tt.spot})
			require.NoError(t, err)
			prov.(*massiveDataProvider).BaseURL = srv.URL
			prov.(*massiveDataProvider).Client = srv.Client()

			spot, err := prov.GetSpot(context.Background(), "AAPL")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "status=401")
				assert.Zero(t, spot)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, spot)
		})
	}
}

func TestNewProvider_LocalMissWithoutSpotSurfaces(t *testing.T) {
	prov, err := NewProvider(Options{Kind: "local", DataDir: t.TempDir()})
	require.NoError(t, err)

	_, err = prov.GetSpot(context.Background(), "SPY")
	assert.Error(t, err)
}

func TestStaticProvider_Unset(t *testing.T) {
	_, err := NewStaticProvider(0, nil).GetSpot(context.Background(), "SPY")
	assert.ErrorIs(t, err, ErrNoSpot)

	spot, err := NewStaticProvider(0, NewStaticProvider(7, nil)).GetSpot(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 7.0, spot)
}

func TestSyntheticProvider(t *testing.T) {
	prov := NewSyntheticProvider(1, nil)

	a, err := prov.GetSpot(context.Background(), "AAPL")
	require.NoError(t, err)
	b, err := prov.GetSpot(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Greater(t, a, 0.0)

	_, err = prov.GetSpot(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoSpot)
}

func TestLocalFileProvider(t *testing.T) {
	dir := t.TempDir()
	csv := "ticker,price\nspy, 581.39\nQQQ,512.1\nBAD,abc\nSHORT\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spots.csv"), []byte(csv), 0644))

	prov := NewLocalFileDataProvider(dir, nil)

	spot, err := prov.GetSpot(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 581.39, spot)

	spot, err = prov.GetSpot(context.Background(), "qqq")
	require.NoError(t, err)
	assert.Equal(t, 512.1, spot)

	_, err = prov.GetSpot(context.Background(), "BAD")
	assert.ErrorIs(t, err, ErrNoSpot)
}

func TestLocalFileProvider_MissingFileDelegates(t *testing.T) {
	prov := NewLocalFileDataProvider(t.TempDir(), NewStaticProvider(12.5, nil))

	spot, err := prov.GetSpot(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 12.5, spot)

	_, err = NewLocalFileDataProvider(t.TempDir(), nil).GetSpot(context.Background(), "SPY")
	assert.Error(t, err)
}
