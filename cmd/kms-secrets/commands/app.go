package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Checker-Finance/kms-secrets/pkg/config"
	"github.com/Checker-Finance/kms-secrets/pkg/secrets"
	"github.com/Checker-Finance/kms-secrets/pkg/utils"
)

// App carries the dependencies shared by every command.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Out    io.Writer

	// NewDecrypter and NewProvider build the AWS clients. Tests replace them.
	NewDecrypter func(ctx context.Context, region string) (secrets.DecryptAPI, error)
	NewProvider  func(ctx context.Context, region string) (secrets.Provider, error)
}

// NewApp wires the AWS-backed defaults.
func NewApp(cfg *config.Config, logger *zap.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger,
		Out:    os.Stdout,
		NewDecrypter: func(ctx context.Context, region string) (secrets.DecryptAPI, error) {
			return secrets.NewKMSClient(ctx, region)
		},
		NewProvider: func(ctx context.Context, region string) (secrets.Provider, error) {
			return secrets.NewAWSProvider(ctx, region)
		},
	}
}

// loadManager registers ciphertexts from the environment and the optional
// bundle, then initializes the Manager.
func (a *App) loadManager(ctx context.Context) (*secrets.Manager, error) {
	cfg := a.Config
	if cfg.InitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.InitTimeout)
		defer cancel()
	}

	client, err := a.NewDecrypter(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create kms client: %w", err)
	}

	opts := []secrets.Option{
		secrets.WithLogger(a.Logger),
		secrets.WithRateLimit(cfg.DecryptRPS, cfg.DecryptBurst),
	}
	if cfg.KMSKeyID != "" {
		opts = append(opts, secrets.WithKeyID(cfg.KMSKeyID))
	}
	if len(cfg.EncryptionContext) > 0 {
		opts = append(opts, secrets.WithEncryptionContext(cfg.EncryptionContext))
	}
	m := secrets.New(client, opts...)
	parse := secrets.ParseAs(cfg.JSONNamespaces...)

	fromEnv := secrets.AddFromEnv(m, cfg.EnvPrefix, parse)
	a.Logger.Debug("secrets.registered_from_env",
		zap.String("prefix", cfg.EnvPrefix),
		zap.Strings("namespaces", fromEnv))

	if cfg.BundleID != "" {
		provider, err := a.NewProvider(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("create secrets manager provider: %w", err)
		}
		fromBundle, err := secrets.AddFromProvider(ctx, m, provider, cfg.BundleID, parse)
		if err != nil {
			return nil, err
		}
		a.Logger.Debug("secrets.registered_from_bundle",
			zap.String("bundle", cfg.BundleID),
			zap.Strings("namespaces", fromBundle))
	}

	if _, err := m.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize secrets: %w", err)
	}
	return m, nil
}

// writeValue prints v as indented JSON, masked unless Config.Reveal is set.
func (a *App) writeValue(v any) error {
	if !a.Config.Reveal {
		v = utils.MaskValue(v)
	}
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
