package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/contactkeval/option-greeks/internal/logger"
)

// localFileDataProvider serves spots from <dir>/spots.csv, rows of "TICKER,PRICE".
// The file is read once on first use.
type localFileDataProvider struct {
	dir       string
	secondary Provider

	once  sync.Once
	spots map[string]float64
	err   error
}

// NewLocalFileDataProvider convenience constructor.
func NewLocalFileDataProvider(dir string, secondary Provider) Provider {
	return &localFileDataProvider{dir: dir, secondary: secondary}
}

func (localFileDataProv *localFileDataProvider) Secondary() Provider {
	return localFileDataProv.secondary
}

func (localFileDataProv *localFileDataProvider) GetSpot(ctx context.Context, underlying string) (float64, error) {
	localFileDataProv.once.Do(localFileDataProv.load)

	if localFileDataProv.err != nil {
		logger.Debugf("local spots unavailable: %v", localFileDataProv.err)
		return delegate(ctx, localFileDataProv, underlying, localFileDataProv.err)
	}
	if spot, ok := localFileDataProv.spots[strings.ToUpper(strings.TrimSpace(underlying))]; ok {
		return spot, nil
	}
	return delegate(ctx, localFileDataProv, underlying,
		fmt.Errorf("%w: %s not in spots.csv", ErrNoSpot, underlying))
}

func (localFileDataProv *localFileDataProvider) load() {
	f, err := os.Open(filepath.Join(localFileDataProv.dir, "spots.csv"))
	if err != nil {
		localFileDataProv.err = fmt.Errorf("open spots file: %w", err)
		return
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		localFileDataProv.err = fmt.Errorf("read csv: %w", err)
		return
	}

	spots := make(map[string]float64, len(records))
	for _, row := range records {
		if len(row) < 2 {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSpace(row[0]))
		spot, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil || spot <= 0 {
			// header rows and junk are skipped
			continue
		}
		spots[ticker] = spot
	}
	localFileDataProv.spots = spots
}
