// Package identity signs authors in with an OAuth 2.0 identity provider.
package identity

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/trezcool/profeweb/core"
	"github.com/trezcool/profeweb/core/user"
)

var (
	googleEndpoint = oauth2.Endpoint{
		AuthURL:   "https://accounts.google.com/o/oauth2/auth",
		TokenURL:  "https://oauth2.googleapis.com/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
)

// Provider is an OAuth 2.0 authorization code flow ending with the signed-in person's identity.
type Provider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (user.Identity, error)
}

type googleProvider struct {
	conf        *oauth2.Config
	userInfoURL string
}

var _ Provider = (*googleProvider)(nil)

func NewGoogleProvider(conf *core.Config) Provider {
	return &googleProvider{
		conf: &oauth2.Config{
			ClientID:     conf.Google.ClientID,
			ClientSecret: conf.Google.ClientSecret,
			RedirectURL:  conf.Google.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleEndpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (p *googleProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type googleUserInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (p *googleProvider) Identify(ctx context.Context, code string) (user.Identity, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return user.Identity{}, errors.Wrap(err, "exchanging authorization code")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return user.Identity{}, errors.Wrap(err, "creating userinfo request")
	}
	res, err := p.conf.Client(ctx, tok).Do(req)
	if err != nil {
		return user.Identity{}, core.NetworkError{Op: "fetching userinfo", Err: err}
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return user.Identity{}, core.StatusError{Code: res.StatusCode, Message: "fetching userinfo"}
	}

	var info googleUserInfo
	if err = json.NewDecoder(res.Body).Decode(&info); err != nil {
		return user.Identity{}, errors.Wrap(err, "decoding userinfo")
	}
	return user.Identity{
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}
