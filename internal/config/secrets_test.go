package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestEnvSecretsCachesWithinTTL(t *testing.T) {
    values := map[string]string{"PAYMENT_WEBHOOK_SECRET": "whsec_1"}
    lookups := 0
    now := time.Unix(1000, 0)

    s := NewEnvSecrets(time.Minute)
    s.lookup = func(name string) (string, bool) {
        lookups++
        v, ok := values[name]
        return v, ok
    }
    s.now = func() time.Time { return now }

    v, err := s.Secret("PAYMENT_WEBHOOK_SECRET")
    require.NoError(t, err)
    assert.Equal(t, "whsec_1", v)

    // A rotation inside the TTL is not observed yet.
    values["PAYMENT_WEBHOOK_SECRET"] = "whsec_2"
    now = now.Add(30 * time.Second)
    v, err = s.Secret("PAYMENT_WEBHOOK_SECRET")
    require.NoError(t, err)
    assert.Equal(t, "whsec_1", v)
    assert.Equal(t, 1, lookups)

    // After the TTL the rotated value is picked up.
    now = now.Add(time.Minute)
    v, err = s.Secret("PAYMENT_WEBHOOK_SECRET")
    require.NoError(t, err)
    assert.Equal(t, "whsec_2", v)
    assert.Equal(t, 2, lookups)
}

func TestEnvSecretsMissingIsError(t *testing.T) {
    s := NewEnvSecrets(time.Minute)
    s.lookup = func(string) (string, bool) { return "", false }

    _, err := s.Secret("NOPE")
    assert.Error(t, err)
}

func TestEnvSecretsEmptyValueIsError(t *testing.T) {
    s := NewEnvSecrets(time.Minute)
    s.lookup = func(string) (string, bool) { return "", true }

    _, err := s.Secret("EMPTY")
    assert.Error(t, err)
}
