package gdata

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"gdupload/pkg/httputil"
)

const (
	clientLoginPath    = "/youtube/accounts/ClientLogin"
	clientLoginService = "youtube"
	tokenType          = "GoogleLogin"
	authMarker         = "Auth="
	errorMarker        = "Error="
)

// Credentials identify the account and the calling application.
type Credentials struct {
	User     string
	Password string
	ClientID string
}

// Session caches a ClientLogin token for its whole lifetime. The first
// caller to need a token fetches it; concurrent callers wait for that fetch
// instead of racing it. Failed fetches are not cached.
type Session struct {
	source oauth2.TokenSource
}

type clientLoginSource struct {
	ctx    context.Context
	sender Sender
	host   string
	creds  Credentials
}

func NewSession(ctx context.Context, sender Sender, authHost string, creds Credentials) *Session {
	src := &clientLoginSource{
		ctx:    ctx,
		sender: sender,
		host:   authHost,
		creds:  creds,
	}
	return &Session{source: oauth2.ReuseTokenSource(nil, src)}
}

// Token returns the cached token, logging in on first use.
func (s *Session) Token() (string, error) {
	tok, err := s.source.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (s *Session) AuthorizationHeader() (string, error) {
	tok, err := s.Token()
	if err != nil {
		return "", err
	}
	return tokenType + " auth=" + tok, nil
}

func (c *clientLoginSource) Token() (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("Email", c.creds.User)
	form.Set("Passwd", c.creds.Password)
	form.Set("service", clientLoginService)
	form.Set("source", c.creds.ClientID)
	encoded := form.Encode()

	slog.Debug("Requesting ClientLogin token", "host", c.host, "user", c.creds.User)

	resp, err := c.sender.Send(c.ctx, httputil.Request{
		Method: http.MethodPost,
		Scheme: httputil.SchemeHTTPS,
		Host:   c.host,
		Path:   clientLoginPath,
		Header: map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
		},
		Body:          strings.NewReader(encoded),
		ContentLength: int64(len(encoded)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request auth token: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		code := lineValue(string(resp.Body), errorMarker)
		if code == "" {
			code = http.StatusText(resp.StatusCode)
		}
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Message: code}
	}

	token := lineValue(string(resp.Body), authMarker)
	if token == "" {
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Message: "no auth token in response"}
	}

	return &oauth2.Token{AccessToken: token, TokenType: tokenType}, nil
}

// lineValue returns the text after marker up to the end of its line.
func lineValue(body, marker string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):])
		}
	}
	return ""
}
