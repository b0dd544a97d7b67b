package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/auth"
	"github.com/MattchuPichuu/WarDaddy/pkg/clock"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// clientStateDefaultSessionTTL is how long a cached login survives
	clientStateDefaultSessionTTL = 7 * 24 * time.Hour
	// clientStateDefaultKeyPrefix is the prefix for all client state keys
	clientStateDefaultKeyPrefix = "wardaddy:client:"
)

// ClientStateStore is the small key-value store that survives reloads.
// It only holds cached sessions and the remembered webhook URL; tracked
// entities are never written here.
type ClientStateStore interface {
	SaveSession(ctx context.Context, sess *auth.Session) error
	GetSession(ctx context.Context, token string) (*auth.Session, error)
	DeleteSession(ctx context.Context, token string) error
	SetWebhookURL(ctx context.Context, url string) error
	GetWebhookURL(ctx context.Context) (string, error)
}

// RedisClientStateStore implements ClientStateStore using Redis.
type RedisClientStateStore struct {
	client *redis.Client
	cfg    RedisClientStateStoreConfig
}

type RedisClientStateStoreConfig struct {
	KeyPrefix  string
	SessionTTL time.Duration
}

// NewRedisClientStateStore creates a new Redis-backed client state store.
func NewRedisClientStateStore(
	client *redis.Client,
	cfg RedisClientStateStoreConfig,
) *RedisClientStateStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = clientStateDefaultKeyPrefix
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = clientStateDefaultSessionTTL
	}

	return &RedisClientStateStore{
		client: client,
		cfg:    cfg,
	}
}

func (r *RedisClientStateStore) sessionKey(token string) string {
	return fmt.Sprintf("%ssession:%s", r.cfg.KeyPrefix, token)
}

func (r *RedisClientStateStore) webhookKey() string {
	return r.cfg.KeyPrefix + "webhook_url"
}

// SaveSession stores the session under its token with the configured TTL
func (r *RedisClientStateStore) SaveSession(ctx context.Context, sess *auth.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, r.sessionKey(sess.Token), data, r.cfg.SessionTTL).Err(); err != nil {
		logrus.Errorf("failed to save session for %s: %v", sess.Username, err)
		return fmt.Errorf("failed to save session: %w", err)
	}

	logrus.Infof("saved session for %s as %s with TTL %v", sess.Username, sess.Role, r.cfg.SessionTTL)
	return nil
}

// GetSession loads a session by token. Unknown or expired tokens are ErrNotFound.
func (r *RedisClientStateStore) GetSession(ctx context.Context, token string) (*auth.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: session", ErrNotFound)
	}
	if err != nil {
		logrus.Errorf("failed to get session: %v", err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess auth.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &sess, nil
}

// DeleteSession forgets a session. Deleting an unknown token is not an error.
func (r *RedisClientStateStore) DeleteSession(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, r.sessionKey(token)).Err(); err != nil {
		logrus.Errorf("failed to delete session: %v", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SetWebhookURL remembers the board webhook endpoint
func (r *RedisClientStateStore) SetWebhookURL(ctx context.Context, url string) error {
	if err := r.client.Set(ctx, r.webhookKey(), url, 0).Err(); err != nil {
		logrus.Errorf("failed to remember webhook url: %v", err)
		return fmt.Errorf("failed to set webhook url: %w", err)
	}

	logrus.Infof("remembered webhook url")
	return nil
}

// GetWebhookURL returns the remembered endpoint, or "" if none was saved
func (r *RedisClientStateStore) GetWebhookURL(ctx context.Context) (string, error) {
	url, err := r.client.Get(ctx, r.webhookKey()).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get webhook url: %w", err)
	}
	return url, nil
}

// MemoryClientStateStore implements ClientStateStore in process memory.
// Used when Redis is disabled; nothing survives a restart.
type MemoryClientStateStore struct {
	mu         sync.Mutex
	clock      clock.Clock
	ttl        time.Duration
	sessions   map[string]memorySession
	webhookURL string
}

type memorySession struct {
	session   auth.Session
	expiresAt time.Time
}

// NewMemoryClientStateStore creates an in-memory client state store
func NewMemoryClientStateStore(clk clock.Clock, sessionTTL time.Duration) *MemoryClientStateStore {
	if sessionTTL <= 0 {
		sessionTTL = clientStateDefaultSessionTTL
	}
	return &MemoryClientStateStore{
		clock:    clk,
		ttl:      sessionTTL,
		sessions: make(map[string]memorySession),
	}
}

// SaveSession implements ClientStateStore
func (m *MemoryClientStateStore) SaveSession(_ context.Context, sess *auth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sess.Token] = memorySession{session: *sess, expiresAt: m.clock.Now().Add(m.ttl)}
	return nil
}

// GetSession implements ClientStateStore
func (m *MemoryClientStateStore) GetSession(_ context.Context, token string) (*auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[token]
	if !ok || !m.clock.Now().Before(entry.expiresAt) {
		delete(m.sessions, token)
		return nil, fmt.Errorf("%w: session", ErrNotFound)
	}

	sess := entry.session
	return &sess, nil
}

// DeleteSession implements ClientStateStore
func (m *MemoryClientStateStore) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

// SetWebhookURL implements ClientStateStore
func (m *MemoryClientStateStore) SetWebhookURL(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.webhookURL = url
	return nil
}

// GetWebhookURL implements ClientStateStore
func (m *MemoryClientStateStore) GetWebhookURL(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.webhookURL, nil
}
