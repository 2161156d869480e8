package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource names where credentials are resolved from.
type SecretSource string

const (
	// SourceEnvironment resolves secrets from process environment variables.
	SourceEnvironment SecretSource = "environment"
	// SourceVault resolves secrets from Azure Key Vault.
	SourceVault SecretSource = "vault"
	// SourceAuto picks the source from the deployment environment: vault in
	// staging and production, environment variables everywhere else.
	SourceAuto SecretSource = "auto"
)

// Provider resolves named secrets from a single configured source. An
// explicitly set environment variable always wins over the vault, so
// operators can override individual credentials without touching Key Vault.
type Provider struct {
	source SecretSource
	vault  *VaultClient
	logger *zap.Logger
}

// ProviderConfig configures a Provider. VaultName is required for the vault
// source; CacheTTL bounds how long vault reads are reused.
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NewProvider builds a Provider, resolving SourceAuto against the
// environment and dialing Key Vault when the vault source is selected.
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := resolveSource(cfg.Source, cfg.Environment)

	p := &Provider{source: source, logger: logger}

	if source == SourceVault {
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required for the vault secret source")
		}
		vault, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("key vault client: %w", err)
		}
		p.vault = vault
	}

	logger.Info("secrets provider ready",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return p, nil
}

func resolveSource(source SecretSource, environment string) SecretSource {
	if source != SourceAuto {
		return source
	}
	switch environment {
	case "development", "local", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// GetSecret resolves a secret by name: a Key Vault secret name for the vault
// source, an environment variable name otherwise.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		value := os.Getenv(name)
		if value == "" {
			return "", fmt.Errorf("environment variable %q not set", name)
		}
		return value, nil
	case SourceVault:
		return p.vault.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source %q", p.source)
	}
}

// GetSecretOrEnv resolves a secret, letting an explicitly set environment
// variable override whatever the configured source holds.
func (p *Provider) GetSecretOrEnv(ctx context.Context, name, envName string) (string, error) {
	if value := os.Getenv(envName); value != "" {
		p.logger.Debug("environment override for secret", zap.String("env", envName))
		return value, nil
	}
	return p.GetSecret(ctx, name)
}

// IsVaultEnabled reports whether secrets are served from Key Vault.
func (p *Provider) IsVaultEnabled() bool {
	return p.source == SourceVault
}
