// Package google checks Google OAuth access tokens against the userinfo
// endpoint and returns the identity they belong to.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vtnhan03/final-be/internal/common"
)

// DefaultUserinfoURL is Google's OAuth2 v1 userinfo endpoint.
const DefaultUserinfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"

// ErrInvalidGoogleToken is returned for every rejected token.
var ErrInvalidGoogleToken = common.NewError(common.ErrorUnauthorized, "Invalid Google token")

// Profile is the identity asserted by Google for an access token.
type Profile struct {
	Subject       string
	Email         string
	Name          string
	GivenName     string
	FamilyName    string
	EmailVerified bool
}

type userinfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	VerifiedEmail *bool  `json:"verified_email"`
}

// Verifier resolves access tokens through the userinfo endpoint.
type Verifier struct {
	client *http.Client
	url    string
}

// NewVerifier returns a Verifier calling endpoint with the given timeout.
// An empty endpoint uses DefaultUserinfoURL.
func NewVerifier(endpoint string, timeout time.Duration) *Verifier {
	if endpoint == "" {
		endpoint = DefaultUserinfoURL
	}
	return &Verifier{
		client: &http.Client{Timeout: timeout},
		url:    endpoint,
	}
}

// Verify returns the profile for accessToken. Transport failures, non-200
// answers, incomplete profiles and unverified emails all yield
// ErrInvalidGoogleToken.
func (v *Verifier) Verify(ctx context.Context, accessToken string) (*Profile, error) {
	accessToken = strings.TrimSpace(strings.TrimPrefix(accessToken, common.BearerScheme+" "))
	if accessToken == "" {
		return nil, ErrInvalidGoogleToken
	}

	u, err := url.Parse(v.url)
	if err != nil {
		return nil, fmt.Errorf("userinfo url: %w", err)
	}
	q := u.Query()
	q.Set("access_token", accessToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrInvalidGoogleToken
	}

	var info userinfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return nil, ErrInvalidGoogleToken
	}

	if info.Email == "" || info.Name == "" || info.GivenName == "" || info.FamilyName == "" {
		return nil, ErrInvalidGoogleToken
	}

	verified := true
	if info.VerifiedEmail != nil {
		verified = *info.VerifiedEmail
	}
	if !verified {
		return nil, ErrInvalidGoogleToken
	}

	return &Profile{
		Subject:       info.ID,
		Email:         info.Email,
		Name:          info.Name,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
		EmailVerified: verified,
	}, nil
}
