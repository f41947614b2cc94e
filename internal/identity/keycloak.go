package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/bojanm/teamster-api/internal/config"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists in identity provider")
	ErrUserNotFound       = errors.New("user not found in identity provider")
)

// Tokens is the pair handed back to clients after login or refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Client talks to a Keycloak instance. End-user authentication goes through
// the realm's confidential client with the password grant; account management
// goes through the admin REST API with an admin-cli token on the master realm.
type Client struct {
	cfg   config.KeycloakConfig
	oauth *oauth2.Config
	admin *oauth2.Config
	http  *http.Client
}

func NewClient(cfg config.KeycloakConfig) *Client {
	return &Client{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", cfg.BaseURL, cfg.Realm),
			},
		},
		admin: &oauth2.Config{
			ClientID: "admin-cli",
			Endpoint: oauth2.Endpoint{
				TokenURL: fmt.Sprintf("%s/realms/master/protocol/openid-connect/token", cfg.BaseURL),
			},
		},
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Login exchanges the user's credentials for a token pair via the password
// grant.
func (c *Client) Login(ctx context.Context, username, password string) (*Tokens, error) {
	token, err := c.oauth.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response.StatusCode == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	return tokensFrom(token), nil
}

// Refresh trades a refresh token for a fresh pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	source := c.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response.StatusCode == http.StatusBadRequest {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return tokensFrom(token), nil
}

// Register creates the account in the identity provider, sets its password,
// and assigns the realm role. Returns the provider's user id.
func (c *Client) Register(ctx context.Context, email, firstName, lastName, password, role string) (string, error) {
	adminToken, err := c.adminToken(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]any{
		"username":  email,
		"email":     email,
		"firstName": firstName,
		"lastName":  lastName,
		"enabled":   true,
		"credentials": []map[string]any{
			{"type": "password", "value": password, "temporary": false},
		},
	}

	resp, err := c.do(ctx, adminToken, http.MethodPost, c.adminURL("users"), body)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusConflict:
		return "", ErrUserExists
	default:
		return "", fmt.Errorf("identity provider returned status %d on user create", resp.StatusCode)
	}

	userID := path.Base(resp.Header.Get("Location"))
	if userID == "" || userID == "." {
		return "", fmt.Errorf("identity provider did not return a user id")
	}

	if err := c.assignRealmRole(ctx, adminToken, userID, role); err != nil {
		return "", err
	}
	return userID, nil
}

// UpdateUser pushes profile changes to the provider so the local mirror and
// the identity account stay in step.
func (c *Client) UpdateUser(ctx context.Context, userID, email, firstName, lastName string) error {
	adminToken, err := c.adminToken(ctx)
	if err != nil {
		return err
	}

	body := map[string]any{
		"username":  email,
		"email":     email,
		"firstName": firstName,
		"lastName":  lastName,
	}

	resp, err := c.do(ctx, adminToken, http.MethodPut, c.adminURL("users", userID), body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrUserNotFound
	default:
		return fmt.Errorf("identity provider returned status %d on user update", resp.StatusCode)
	}
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	adminToken, err := c.adminToken(ctx)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, adminToken, http.MethodDelete, c.adminURL("users", userID), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrUserNotFound
	default:
		return fmt.Errorf("identity provider returned status %d on user delete", resp.StatusCode)
	}
}

func (c *Client) assignRealmRole(ctx context.Context, adminToken, userID, role string) error {
	resp, err := c.do(ctx, adminToken, http.MethodGet, c.adminURL("roles", role), nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity provider returned status %d fetching role %s", resp.StatusCode, role)
	}

	var roleRep struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&roleRep); err != nil {
		return fmt.Errorf("failed to decode role representation: %w", err)
	}

	mapResp, err := c.do(ctx, adminToken, http.MethodPost,
		c.adminURL("users", userID, "role-mappings", "realm"),
		[]map[string]string{{"id": roleRep.ID, "name": roleRep.Name}})
	if err != nil {
		return err
	}
	defer func() { _ = mapResp.Body.Close() }()

	if mapResp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("identity provider returned status %d assigning role %s", mapResp.StatusCode, role)
	}
	return nil
}

func (c *Client) adminToken(ctx context.Context) (string, error) {
	token, err := c.admin.PasswordCredentialsToken(ctx, c.cfg.AdminUser, c.cfg.AdminPassword)
	if err != nil {
		return "", fmt.Errorf("failed to obtain admin token: %w", err)
	}
	return token.AccessToken, nil
}

func (c *Client) adminURL(parts ...string) string {
	url := fmt.Sprintf("%s/admin/realms/%s", c.cfg.BaseURL, c.cfg.Realm)
	for _, p := range parts {
		url += "/" + p
	}
	return url
}

func (c *Client) do(ctx context.Context, token, method, url string, body any) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request failed: %w", err)
	}
	return resp, nil
}

func tokensFrom(token *oauth2.Token) *Tokens {
	expiresIn := int64(time.Until(token.Expiry).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return &Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    expiresIn,
	}
}
