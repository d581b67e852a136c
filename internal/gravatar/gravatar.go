package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"

	"github.com/jon4hz/oktasim/internal/config"
	"github.com/jon4hz/oktasim/internal/directory"
)

const baseURL = "https://www.gravatar.com/avatar/"

// Resolver builds avatar URLs for user emails.
// A nil Resolver or a disabled config yields empty URLs.
type Resolver struct {
	query string
}

// New returns nil when Gravatar is disabled.
func New(cfg *config.GravatarConfig) *Resolver {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Add("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Add("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Add("s", strconv.Itoa(cfg.Size))
	}

	return &Resolver{query: params.Encode()}
}

// URL returns the avatar URL for the given email.
func (r *Resolver) URL(email string) string {
	if r == nil {
		return ""
	}
	email = directory.NormalizeEmail(email)
	if email == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(email))
	u := baseURL + hex.EncodeToString(hash[:])
	if r.query != "" {
		u += "?" + r.query
	}
	return u
}
