package utils

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestWebhookSignatureRoundTrip(t *testing.T) {
    payload := []byte(`{"type":"checkout.session.completed"}`)
    now := time.Unix(1767225600, 0)
    header := SignWebhookPayload(payload, "whsec_test", now)

    err := VerifyWebhookSignature(payload, header, "whsec_test", 5*time.Minute, now)
    assert.NoError(t, err)
}

func TestWebhookSignatureRejectsTamperedPayload(t *testing.T) {
    payload := []byte(`{"amount":100}`)
    now := time.Unix(1767225600, 0)
    header := SignWebhookPayload(payload, "whsec_test", now)

    err := VerifyWebhookSignature([]byte(`{"amount":999}`), header, "whsec_test", 5*time.Minute, now)
    assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestWebhookSignatureRejectsWrongSecret(t *testing.T) {
    payload := []byte(`{}`)
    now := time.Unix(1767225600, 0)
    header := SignWebhookPayload(payload, "whsec_a", now)

    err := VerifyWebhookSignature(payload, header, "whsec_b", 5*time.Minute, now)
    assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestWebhookSignatureRejectsStaleTimestamp(t *testing.T) {
    payload := []byte(`{}`)
    signedAt := time.Unix(1767225600, 0)
    header := SignWebhookPayload(payload, "whsec_test", signedAt)

    // Within tolerance passes, beyond it fails.
    require.NoError(t, VerifyWebhookSignature(payload, header, "whsec_test", 5*time.Minute, signedAt.Add(4*time.Minute)))
    assert.ErrorIs(t,
        VerifyWebhookSignature(payload, header, "whsec_test", 5*time.Minute, signedAt.Add(6*time.Minute)),
        ErrInvalidSignature)
    // A timestamp from the future is just as suspect.
    assert.ErrorIs(t,
        VerifyWebhookSignature(payload, header, "whsec_test", 5*time.Minute, signedAt.Add(-6*time.Minute)),
        ErrInvalidSignature)
}

func TestWebhookSignatureRejectsMalformedHeaders(t *testing.T) {
    payload := []byte(`{}`)
    now := time.Unix(1767225600, 0)
    for _, header := range []string{
        "",
        "v1=abc",
        "t=notanumber,v1=abc",
        "t=1767225600",
        "t=1767225600,v1=zzzz", // not hex
    } {
        assert.ErrorIs(t,
            VerifyWebhookSignature(payload, header, "whsec_test", 5*time.Minute, now),
            ErrInvalidSignature, "header %q", header)
    }
}

func TestVerificationTokenRoundTrip(t *testing.T) {
    token := VerificationToken("secret", "reg-123")
    assert.True(t, CheckVerificationToken("secret", "reg-123", token))
    assert.False(t, CheckVerificationToken("secret", "reg-124", token))
    assert.False(t, CheckVerificationToken("other", "reg-123", token))
    assert.False(t, CheckVerificationToken("secret", "reg-123", "not-hex"))
    assert.False(t, CheckVerificationToken("secret", "reg-123", ""))
}
