package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/contactkeval/option-greeks/internal/api"
	"github.com/contactkeval/option-greeks/internal/config"
	"github.com/contactkeval/option-greeks/internal/data"
	"github.com/contactkeval/option-greeks/internal/logger"
	"github.com/contactkeval/option-greeks/internal/pricing"
	"github.com/contactkeval/option-greeks/internal/report"
)

func main() {
	cfg, rest, err := loadConfig(os.Args[1:])
	if err != nil {
		logger.Errorf("invalid configuration: %v", err)
		os.Exit(1)
	}
	logger.SetVerbosity(cfg.Verbosity)
	defer logger.Sync()

	prov, err := data.NewProvider(providerOptions(cfg))
	if err != nil {
		logger.Errorf("data provider: %v", err)
		os.Exit(1)
	}
	logger.Infof("%s provider enabled", cfg.Provider)

	if rest {
		router := api.NewRouter(api.NewPricingHandler(prov, cfg.Workers))
		logger.Infof("starting REST server on %s", cfg.Listen)
		if err := http.ListenAndServe(cfg.Listen, router); err != nil {
			logger.Errorf("REST server stopped: %v", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, prov); err != nil {
		logger.Errorf("pricing failed: %v", err)
		os.Exit(1)
	}
}

// loadConfig parses the command line, loads the config file it names and
// applies the flags given explicitly. The merged result is validated again,
// so overrides obey the same rules as the file.
func loadConfig(args []string) (*config.Config, bool, error) {
	fs := flag.NewFlagSet("option-greeks", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to JSON/YAML config (defaults apply when empty)")
	rest := fs.Bool("rest", false, "run as REST server (accept pricing requests)")
	port := fs.String("port", "", "REST server listen address (overrides config)")
	verbosity := fs.Int("v", -1, "log verbosity 0=error 1=info 2=debug 3=trace (overrides config)")
	spot := fs.Float64("S", 0, "spot price (overrides config and any provider lookup)")
	strike := fs.Float64("K", 0, "strike price (overrides config)")
	expiry := fs.Float64("T", 0, "time to expiry in years (overrides config)")
	rate := fs.Float64("r", 0, "risk-free rate (overrides config)")
	vol := fs.Float64("sigma", 0, "annualized volatility (overrides config)")
	outDir := fs.String("out", "", "directory for greeks.json and payoff.csv (overrides config)")
	if err := fs.Parse(args); err != nil {
		return nil, false, err
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return nil, false, err
	}

	// only flags given on the command line override the config
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Listen = *port
		case "v":
			cfg.Verbosity = *verbosity
		case "S":
			cfg.Spot = *spot
			cfg.SpotExplicit = true
		case "K":
			cfg.Strike = *strike
		case "T":
			cfg.Expiry = *expiry
		case "r":
			cfg.Rate = *rate
		case "sigma":
			cfg.Volatility = *vol
		case "out":
			cfg.ReportDir = *outDir
		}
	})
	if err := config.Validate(cfg); err != nil {
		return nil, false, err
	}
	return cfg, *rest, nil
}

// providerOptions maps the config onto a provider chain. The configured spot
// backs the chain only when the user supplied it; the built-in default never
// stands in for a failed lookup.
func providerOptions(cfg *config.Config) data.Options {
	opts := data.Options{
		Kind:    cfg.Provider,
		APIKey:  cfg.APIKey,
		DataDir: cfg.DataDir,
	}
	if cfg.SpotExplicit || cfg.Provider == config.ProviderStatic {
		opts.Spot = cfg.Spot
	}
	return opts
}

// resolveSpot returns the spot to price at. A user-supplied spot is used as
// given, even when non-positive, so the pricing engine reports it.
func resolveSpot(ctx context.Context, cfg *config.Config, prov data.Provider) (float64, error) {
	if cfg.SpotExplicit || cfg.Provider == config.ProviderStatic {
		return cfg.Spot, nil
	}
	return prov.GetSpot(ctx, cfg.Underlying)
}

func run(cfg *config.Config, prov data.Provider) error {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	s, err := resolveSpot(ctx, cfg, prov)
	if err != nil {
		return err
	}

	in := pricing.MarketInputs{S: s, K: cfg.Strike, T: cfg.Expiry, R: cfg.Rate, Sigma: cfg.Volatility}
	logger.Debugf("inputs S=%.4f K=%.4f T=%.4f r=%.4f sigma=%.4f", in.S, in.K, in.T, in.R, in.Sigma)

	res, err := pricing.Price(in)
	if err != nil {
		var de *pricing.DomainError
		if errors.As(err, &de) {
			logger.Errorf("check the %s input", de.Field)
		}
		return err
	}

	if err := report.Print(os.Stdout, res); err != nil {
		return err
	}

	if cfg.ReportDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
		return err
	}

	curve := pricing.PayoffCurve(cfg.Payoff.Min, cfg.Payoff.Max, cfg.Payoff.Points, in.K, res.CallPrice, res.PutPrice)
	if err := report.WriteJSON(report.NewDocument(cfg.Underlying, in, res, curve), cfg.ReportDir); err != nil {
		return err
	}
	if err := report.WriteCSV(curve, cfg.ReportDir); err != nil {
		return err
	}
	logger.Infof("finished in %v, wrote %d payoff points to %s", time.Since(start), len(curve), cfg.ReportDir)
	return nil
}
