package config

// This file defines a small secret-provider abstraction for values that
// can rotate at runtime, such as the payment webhook signing secret.
// The environment-backed implementation caches lookups for a TTL so a
// rotated value is picked up without a restart but the environment is
// not consulted on every request.

import (
    "fmt"
    "os"
    "sync"
    "time"
)

// SecretProvider resolves a named secret.  Implementations must be safe
// for concurrent use.
type SecretProvider interface {
    Secret(name string) (string, error)
}

// EnvSecrets reads secrets from environment variables with a TTL cache.
type EnvSecrets struct {
    ttl    time.Duration
    mu     sync.Mutex
    values map[string]cachedSecret

    // lookup and now are replaceable for tests.
    lookup func(string) (string, bool)
    now    func() time.Time
}

type cachedSecret struct {
    value   string
    expires time.Time
}

// NewEnvSecrets builds an environment-backed provider whose entries
// expire after ttl.
func NewEnvSecrets(ttl time.Duration) *EnvSecrets {
    return &EnvSecrets{
        ttl:    ttl,
        values: make(map[string]cachedSecret),
        lookup: os.LookupEnv,
        now:    time.Now,
    }
}

// Secret returns the named secret, refreshing the cached value once its
// TTL has passed.  A missing or empty variable is an error: secrets are
// never optional at the point of use.
func (e *EnvSecrets) Secret(name string) (string, error) {
    e.mu.Lock()
    defer e.mu.Unlock()
    if c, ok := e.values[name]; ok && e.now().Before(c.expires) {
        return c.value, nil
    }
    v, ok := e.lookup(name)
    if !ok || v == "" {
        return "", fmt.Errorf("secret %s is not set", name)
    }
    e.values[name] = cachedSecret{value: v, expires: e.now().Add(e.ttl)}
    return v, nil
}
