package handoff

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/goatlabs/storefront/pkg/session"
)

// Credential-bearing keys managed by this package. Strip removes exactly
// this set; Build re-embeds it.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyExpiresIn    = "expires_in"
	keyTokenType    = "token_type"
)

var credentialKeys = []string{keyAccessToken, keyRefreshToken, keyExpiresIn, keyTokenType}

// Builder constructs SSO handoff URLs relative to a home origin. Targets on
// the same origin are considered already authenticated via storage.
type Builder struct {
	origin *url.URL
}

// NewBuilder creates a Builder for the given home origin, e.g.
// "https://app.example.com".
func NewBuilder(origin string) (*Builder, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("handoff: invalid origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("handoff: origin %q must be absolute", origin)
	}
	return &Builder{origin: u}, nil
}

// Strip removes the credential key set from both the query string and the
// fragment of rawURL. Unparseable URLs are returned unchanged: a broken
// destination must not silently turn into a different one.
func (b *Builder) Strip(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := u.Query()
	for _, key := range credentialKeys {
		query.Del(key)
	}
	u.RawQuery = query.Encode()

	if u.Fragment != "" {
		fragment, err := url.ParseQuery(u.Fragment)
		if err == nil {
			for _, key := range credentialKeys {
				fragment.Del(key)
			}
			u.Fragment = fragment.Encode()
		}
	}

	return u.String()
}

// Build strips rawURL and, when the target is cross-origin, re-embeds the
// session's token set into the fragment. Same-origin destinations get the
// stripped URL back untouched. Sessions without a token never produce
// credential-bearing URLs.
func (b *Builder) Build(rawURL string, s *session.Session) string {
	stripped := b.Strip(rawURL)
	if s == nil || s.Token == nil || s.Token.AccessToken == "" {
		return stripped
	}

	u, err := url.Parse(stripped)
	if err != nil {
		return stripped
	}
	if b.sameOrigin(u) {
		return stripped
	}

	fragment, err := url.ParseQuery(u.Fragment)
	if err != nil {
		fragment = url.Values{}
	}
	fragment.Set(keyAccessToken, s.Token.AccessToken)
	fragment.Set(keyRefreshToken, s.Token.RefreshToken)
	fragment.Set(keyExpiresIn, strconv.FormatInt(s.Token.ExpiresIn, 10))
	fragment.Set(keyTokenType, s.Token.TokenType)
	u.Fragment = fragment.Encode()

	return u.String()
}

func (b *Builder) sameOrigin(u *url.URL) bool {
	if u.Host == "" {
		// Relative URLs resolve against the home origin.
		return true
	}
	return u.Scheme == b.origin.Scheme && u.Host == b.origin.Host
}
