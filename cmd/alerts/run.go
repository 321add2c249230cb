package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jhoicas/stocker-api/pkg/config"
)

// Valores de --only.
const (
	onlyLow    = "low"
	onlyExpiry = "expiry"
	onlyAll    = "all"
)

type options struct {
	Days  int
	To    string
	Only  string
	Owner string
}

func parseFlags(args []string, cfg *config.Config) (options, error) {
	var opts options
	fs := pflag.NewFlagSet("alerts", pflag.ContinueOnError)
	fs.IntVar(&opts.Days, "days", cfg.Alerts.ExpiryDays, "días hacia adelante para vencimientos")
	fs.StringVar(&opts.To, "to", cfg.Alerts.ManagerEmail, "destinatario (por defecto MANAGER_EMAIL)")
	fs.StringVar(&opts.Only, "only", onlyAll, "low | expiry | all")
	fs.StringVar(&opts.Owner, "owner", "", "limitar a un dueño (vacío = todos)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	opts.Only = strings.ToLower(strings.TrimSpace(opts.Only))
	switch opts.Only {
	case onlyLow, onlyExpiry, onlyAll:
	default:
		return options{}, fmt.Errorf("--only inválido: %q (low|expiry|all)", opts.Only)
	}
	if opts.Days < 0 {
		return options{}, fmt.Errorf("--days no puede ser negativo")
	}
	return opts, nil
}

type digester interface {
	SendLowStockDigest(ctx context.Context, ownerID, to string) (int, error)
	SendExpiryDigest(ctx context.Context, ownerID string, days int, to string) (int, error)
}

type result struct {
	LowStock int
	Expiring int
	To       string
}

func (r result) String() string {
	return fmt.Sprintf("alertas enviadas • bajo stock: %d, vencimiento: %d → %s", r.LowStock, r.Expiring, r.To)
}

func run(ctx context.Context, opts options, d digester) (result, error) {
	res := result{To: opts.To}
	if opts.Only == onlyLow || opts.Only == onlyAll {
		n, err := d.SendLowStockDigest(ctx, opts.Owner, opts.To)
		if err != nil {
			return res, fmt.Errorf("bajo stock: %w", err)
		}
		res.LowStock = n
	}
	if opts.Only == onlyExpiry || opts.Only == onlyAll {
		n, err := d.SendExpiryDigest(ctx, opts.Owner, opts.Days, opts.To)
		if err != nil {
			return res, fmt.Errorf("vencimientos: %w", err)
		}
		res.Expiring = n
	}
	return res, nil
}
