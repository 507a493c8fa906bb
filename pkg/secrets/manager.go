package secrets

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Checker-Finance/kms-secrets/internal/metrics"
	"github.com/Checker-Finance/kms-secrets/internal/rate"
)

type entry struct {
	ciphertext string
	parse      ParseFunc
}

type result struct {
	namespace string
	value     any
}

// Manager registers KMS ciphertexts, decrypts them in one batch and serves
// lookups into the decrypted values.
//
// Lookups are only valid once Initialize has returned successfully; the
// decrypted values are never refreshed for the lifetime of the Manager.
type Manager struct {
	client DecryptAPI
	logger *zap.Logger

	keyID         string
	encryptionCtx map[string]string
	limiter       *rate.Limiter

	initMu sync.Mutex // serializes Initialize

	mu          sync.RWMutex
	secrets     map[string]entry
	decrypted   map[string]any
	initialized bool

	query *queryCache
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithKeyID pins every Decrypt call to the given KMS key.
func WithKeyID(keyID string) Option {
	return func(m *Manager) { m.keyID = keyID }
}

// WithEncryptionContext sends the given encryption context with every Decrypt call.
func WithEncryptionContext(ec map[string]string) Option {
	return func(m *Manager) { m.encryptionCtx = ec }
}

// WithRateLimit caps Decrypt calls at requestsPerSecond, allowing bursts of
// up to burst calls. A non-positive rate leaves calls unthrottled.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(m *Manager) {
		if requestsPerSecond > 0 {
			m.limiter = rate.New(requestsPerSecond, burst)
		}
	}
}

// New creates a Manager backed by client, typically a *kms.Client.
func New(client DecryptAPI, opts ...Option) *Manager {
	m := &Manager{
		client:    client,
		logger:    zap.NewNop(),
		secrets:   make(map[string]entry),
		decrypted: make(map[string]any),
		query:     newQueryCache(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddSecret registers ciphertext under namespace, replacing any earlier
// registration. A nil parse stores the plaintext as a string.
func (m *Manager) AddSecret(namespace, ciphertext string, parse ParseFunc) {
	if parse == nil {
		parse = Identity
	}
	m.mu.Lock()
	m.secrets[namespace] = entry{ciphertext: ciphertext, parse: parse}
	m.mu.Unlock()
}

// Initialize decrypts and parses every registered secret concurrently.
// It returns false without decrypting anything if the Manager is already
// initialized. If any decrypt or parse fails, nothing is stored and the
// error is returned; Initialize may then be called again.
func (m *Manager) Initialize(ctx context.Context) (bool, error) {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	if m.Initialized() {
		return false, nil
	}

	m.mu.RLock()
	namespaces := make([]string, 0, len(m.secrets))
	snapshot := make([]entry, 0, len(m.secrets))
	for ns, e := range m.secrets {
		namespaces = append(namespaces, ns)
		snapshot = append(snapshot, e)
	}
	m.mu.RUnlock()

	m.logger.Debug("secrets.initialize_started", zap.Int("count", len(snapshot)))
	start := time.Now()

	results := make([]result, len(snapshot))
	g, gctx := errgroup.WithContext(ctx)
	for i := range snapshot {
		i := i
		g.Go(func() error {
			value, err := m.decrypt(gctx, namespaces[i], snapshot[i])
			if err != nil {
				return err
			}
			results[i] = result{namespace: namespaces[i], value: value}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.IncInitialize("failure")
		return false, err
	}

	m.mu.Lock()
	for _, r := range results {
		m.decrypted[r.namespace] = r.value
	}
	m.initialized = true
	m.mu.Unlock()

	metrics.IncInitialize("success")
	m.logger.Info("secrets.initialized",
		zap.Int("count", len(results)),
		zap.Duration("elapsed", time.Since(start)))
	return true, nil
}

// decrypt runs one Decrypt call and applies the entry's parse function.
func (m *Manager) decrypt(ctx context.Context, namespace string, e entry) (any, error) {
	input := &kms.DecryptInput{
		CiphertextBlob:    []byte(e.ciphertext),
		EncryptionContext: m.encryptionCtx,
	}
	if m.keyID != "" {
		input.KeyId = aws.String(m.keyID)
	}

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, &DecryptError{Namespace: namespace, Err: err}
		}
	}

	start := time.Now()
	out, err := m.client.Decrypt(ctx, input)
	if err != nil {
		metrics.IncDecrypt("error")
		metrics.ObserveDuration(metrics.DecryptDuration, start, "error")
		return nil, &DecryptError{Namespace: namespace, Err: err}
	}
	metrics.IncDecrypt("ok")
	metrics.ObserveDuration(metrics.DecryptDuration, start, "ok")

	var plaintext []byte
	if out != nil {
		plaintext = out.Plaintext
	}
	value, err := e.parse(plaintext)
	if err != nil {
		return nil, &ParseError{Namespace: namespace, Err: err}
	}
	return value, nil
}

// Initialized reports whether Initialize has completed successfully.
func (m *Manager) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// Get resolves a dotted path such as "db.password" against the decrypted
// secrets, returning def when any segment is missing.
func (m *Manager) Get(path string, def any) (any, error) {
	return m.GetKeys(SplitPath(path), def)
}

// GetKeys is Get with the path already split into segments.
func (m *Manager) GetKeys(keys []string, def any) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.initialized {
		return nil, ErrUninitialized
	}
	return lookup(m.decrypted, keys, def), nil
}

// Value resolves path like Get and asserts the result to T. A result of any
// other type yields def.
func Value[T any](m *Manager, path string, def T) (T, error) {
	v, err := m.Get(path, def)
	if err != nil {
		var zero T
		return zero, err
	}
	if t, ok := v.(T); ok {
		return t, nil
	}
	return def, nil
}

// Namespaces returns the sorted namespaces that hold decrypted values.
func (m *Manager) Namespaces() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.decrypted))
	for ns := range m.decrypted {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}
