// Package app provides a dependency injection container for assembling the
// vault from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	auditRepository "github.com/vitaldiary/entryvault/internal/audit/repository"
	auditUseCase "github.com/vitaldiary/entryvault/internal/audit/usecase"
	"github.com/vitaldiary/entryvault/internal/config"
	cryptoDomain "github.com/vitaldiary/entryvault/internal/crypto/domain"
	cryptoService "github.com/vitaldiary/entryvault/internal/crypto/service"
	"github.com/vitaldiary/entryvault/internal/encoding"
	"github.com/vitaldiary/entryvault/internal/metrics"
	"github.com/vitaldiary/entryvault/internal/storage"
	vaultRepository "github.com/vitaldiary/entryvault/internal/vault/repository"
	vaultUseCase "github.com/vitaldiary/entryvault/internal/vault/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	config *config.Config

	logger          *slog.Logger
	adapter         storage.Adapter
	codec           encoding.Codec
	selector        cryptoService.BackendSelector
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	auditEmitter    auditUseCase.Emitter
	auditRepo       auditRepository.EventRepository
	keyringRepo     vaultRepository.KeyringRepository
	envelopeRepo    vaultRepository.EnvelopeRepository
	vault           vaultUseCase.Vault

	loggerInit      sync.Once
	adapterInit     sync.Once
	selectorInit    sync.Once
	metricsInit     sync.Once
	vaultInit       sync.Once
	initErrors      map[string]error
	initErrorsMutex sync.Mutex
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Adapter returns the storage adapter, opening the embedded store on first access.
func (c *Container) Adapter() (storage.Adapter, error) {
	c.adapterInit.Do(func() {
		adapter, err := storage.NewBadgerAdapter(c.config.StoragePath)
		if err != nil {
			c.storeInitError("adapter", fmt.Errorf("failed to open storage at %s: %w", c.config.StoragePath, err))
			return
		}
		c.adapter = adapter
	})
	if err := c.initError("adapter"); err != nil {
		return nil, err
	}
	return c.adapter, nil
}

// Selector returns the capability-probed cipher backend selector.
func (c *Container) Selector() cryptoService.BackendSelector {
	c.selectorInit.Do(func() {
		c.selector = cryptoService.NewCapabilityProbe(c.config.IsProduction(), c.config.AllowInsecureBackend)
	})
	return c.selector
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsInit.Do(func() {
		if !c.config.MetricsEnabled {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.storeInitError("metrics", err)
			return
		}
		business, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.storeInitError("metrics", err)
			return
		}
		c.metricsProvider = provider
		c.businessMetrics = business
	})
	if err := c.initError("metrics"); err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// AuditEventRepository returns the repository the audit trail is read from.
func (c *Container) AuditEventRepository() (auditRepository.EventRepository, error) {
	if _, err := c.Vault(); err != nil {
		return nil, err
	}
	return c.auditRepo, nil
}

// KeyringRepository returns the wrapped key record repository.
func (c *Container) KeyringRepository() (vaultRepository.KeyringRepository, error) {
	if _, err := c.Vault(); err != nil {
		return nil, err
	}
	return c.keyringRepo, nil
}

// EnvelopeRepository returns the encrypted envelope repository.
func (c *Container) EnvelopeRepository() (vaultRepository.EnvelopeRepository, error) {
	if _, err := c.Vault(); err != nil {
		return nil, err
	}
	return c.envelopeRepo, nil
}

// Vault returns the fully wired vault use case.
func (c *Container) Vault() (vaultUseCase.Vault, error) {
	c.vaultInit.Do(func() {
		if err := c.initVault(); err != nil {
			c.storeInitError("vault", err)
		}
	})
	if err := c.initError("vault"); err != nil {
		return nil, err
	}
	return c.vault, nil
}

// initVault assembles the vault and its collaborators.
func (c *Container) initVault() error {
	adapter, err := c.Adapter()
	if err != nil {
		return err
	}
	if _, err := c.MetricsProvider(); err != nil {
		return err
	}

	algorithm, err := ParseAlgorithm(c.config.Algorithm)
	if err != nil {
		return err
	}

	kdfParams := cryptoDomain.KdfParams{
		Time:      c.config.KdfTime,
		MemoryKiB: c.config.KdfMemoryKiB,
		Threads:   c.config.KdfThreads,
	}
	if err := kdfParams.Validate(); err != nil {
		return err
	}

	c.codec = encoding.NewStdCodec()
	c.auditRepo = auditRepository.NewStorageEventRepository(adapter)
	c.auditEmitter = auditUseCase.NewEmitter(c.auditRepo, c.Logger(), c.config.AuditEnabled)
	c.keyringRepo = vaultRepository.NewStorageKeyringRepository(adapter, c.codec)
	c.envelopeRepo = vaultRepository.NewStorageEnvelopeRepository(adapter, c.codec)

	selector := c.Selector()
	vault := vaultUseCase.NewVault(
		c.keyringRepo,
		c.envelopeRepo,
		cryptoService.NewKeyManager(selector),
		cryptoService.NewArgon2Deriver(),
		selector,
		c.auditEmitter,
		c.Logger(),
		algorithm,
		kdfParams,
	)
	c.vault = vaultUseCase.NewVaultWithMetrics(vault, c.businessMetrics)
	return nil
}

// Shutdown releases all container resources in reverse initialization order.
func (c *Container) Shutdown(ctx context.Context) error {
	var shutdownErrors []error

	if c.vault != nil {
		c.vault.Close()
	}
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics: %w", err))
		}
	}
	if closer, ok := c.adapter.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("storage: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}
	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// storeInitError records an initialization error under key.
func (c *Container) storeInitError(key string, err error) {
	c.initErrorsMutex.Lock()
	defer c.initErrorsMutex.Unlock()
	c.initErrors[key] = err
}

// initError returns the stored initialization error for key, if any.
func (c *Container) initError(key string) error {
	c.initErrorsMutex.Lock()
	defer c.initErrorsMutex.Unlock()
	return c.initErrors[key]
}

// ParseAlgorithm converts an algorithm name to cryptoDomain.Algorithm.
// Returns an error if the name is not a known algorithm.
func ParseAlgorithm(name string) (cryptoDomain.Algorithm, error) {
	switch name {
	case string(cryptoDomain.AESGCM):
		return cryptoDomain.AESGCM, nil
	case string(cryptoDomain.ChaCha20):
		return cryptoDomain.ChaCha20, nil
	case string(cryptoDomain.InsecureXOR):
		return cryptoDomain.InsecureXOR, nil
	default:
		return "", fmt.Errorf(
			"invalid algorithm: %s (valid options: aes-gcm, chacha20-poly1305, insecure-xor)",
			name,
		)
	}
}
