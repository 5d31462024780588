package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StateSigner issues and checks OAuth state values using HMAC-SHA256.
// A state is "nonce.expiry.mac", so the callback can verify it without
// any server-side storage.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewStateSigner creates a signer whose states are valid for ttl
func NewStateSigner(secret string, ttl time.Duration) *StateSigner {
	return &StateSigner{secret: []byte(secret), ttl: ttl}
}

// NewState returns a fresh signed state
func (s *StateSigner) NewState(now time.Time) string {
	payload := uuid.NewString() + "." + strconv.FormatInt(now.Add(s.ttl).Unix(), 10)
	return payload + "." + s.sign(payload)
}

// Verify reports whether state was issued by this signer and has not expired
func (s *StateSigner) Verify(state string, now time.Time) bool {
	idx := strings.LastIndex(state, ".")
	if idx <= 0 {
		return false
	}
	payload, mac := state[:idx], state[idx+1:]
	if !hmac.Equal([]byte(s.sign(payload)), []byte(mac)) {
		return false
	}

	parts := strings.Split(payload, ".")
	if len(parts) != 2 {
		return false
	}
	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return false
	}
	return now.Unix() <= expiry
}

func (s *StateSigner) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
