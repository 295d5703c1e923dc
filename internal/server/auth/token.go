package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/dmitrijs2005/tasktrack/internal/common"
)

const (
	// OpaqueTokenBytes is the entropy of emailed tokens.
	OpaqueTokenBytes = 20
	// OpaqueTokenTTL is fixed for both verification and reset tokens.
	OpaqueTokenTTL = 15 * time.Minute
)

// OpaqueToken is a freshly issued single-use token. Plain goes into the email
// link and is never stored; Hash and ExpiresAt are persisted on the user.
type OpaqueToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

func NewOpaqueToken(now time.Time) (*OpaqueToken, error) {
	plain, err := common.MakeRandHexString(OpaqueTokenBytes)
	if err != nil {
		return nil, err
	}
	return &OpaqueToken{
		Plain:     plain,
		Hash:      HashToken(plain),
		ExpiresAt: now.Add(OpaqueTokenTTL),
	}, nil
}

// HashToken is the deterministic digest stored in place of a plain token.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
