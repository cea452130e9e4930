package utils

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "fmt"
    "strconv"
    "strings"
    "time"
)

// ErrInvalidSignature is returned when a webhook signature header is
// missing, malformed, expired or does not match the payload.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifyWebhookSignature checks a payment-provider signature header of
// the form "t=<unix>,v1=<hex>" against the raw request payload.  The
// signed message is "<t>.<payload>" and the scheme is HMAC-SHA256 with
// the shared webhook secret.  Timestamps older (or newer) than the
// tolerance window are rejected to blunt replay of captured requests.
func VerifyWebhookSignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
    var ts int64
    var sigs []string
    for _, part := range strings.Split(header, ",") {
        k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
        if !ok {
            continue
        }
        switch k {
        case "t":
            parsed, err := strconv.ParseInt(v, 10, 64)
            if err != nil {
                return ErrInvalidSignature
            }
            ts = parsed
        case "v1":
            sigs = append(sigs, v)
        }
    }
    if ts == 0 || len(sigs) == 0 {
        return ErrInvalidSignature
    }
    age := now.Sub(time.Unix(ts, 0))
    if age > tolerance || age < -tolerance {
        return ErrInvalidSignature
    }
    expected := computeSignature(payload, ts, secret)
    for _, sig := range sigs {
        raw, err := hex.DecodeString(sig)
        if err != nil {
            continue
        }
        if hmac.Equal(raw, expected) {
            return nil
        }
    }
    return ErrInvalidSignature
}

// SignWebhookPayload produces a signature header for a payload, in the
// same format VerifyWebhookSignature accepts.  Used by tests and by
// local tooling that replays webhook deliveries.
func SignWebhookPayload(payload []byte, secret string, at time.Time) string {
    ts := at.Unix()
    return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(computeSignature(payload, ts, secret)))
}

func computeSignature(payload []byte, ts int64, secret string) []byte {
    mac := hmac.New(sha256.New, []byte(secret))
    fmt.Fprintf(mac, "%d.", ts)
    mac.Write(payload)
    return mac.Sum(nil)
}
