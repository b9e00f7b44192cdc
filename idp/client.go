// api/idp/client.go

// Package idp talks to the identity provider's admin API, where user
// region, ACG, and COI attributes live.
package idp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	mealcraft_errors "github.com/mealcraft/api/errors"
	logger "github.com/mealcraft/api/logging"
)

// UserRepresentation is the provider's user record shape. Attributes is a
// map of string-list values; region, acg, and coi are stored there.
type UserRepresentation struct {
	ID         string              `json:"id"`
	Username   string              `json:"username"`
	Email      string              `json:"email"`
	FirstName  string              `json:"firstName,omitempty"`
	LastName   string              `json:"lastName,omitempty"`
	Attributes map[string][]string `json:"attributes,omitempty"`
}

// DisplayName prefers "first last", falling back to the username.
func (u *UserRepresentation) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}

// Directory is the read side consumed by notification fan-out and attribute
// resolution.
type Directory interface {
	GetUserByEmail(ctx context.Context, email string) (*UserRepresentation, error)
	GetUsersWithCOI(ctx context.Context, coi string) ([]string, error)
	GetAccessControlGroupsByEmail(ctx context.Context, email string) ([]string, error)
	GetCommunitiesOfInterestByEmail(ctx context.Context, email string) ([]string, error)
	GetRegionByEmail(ctx context.Context, email string) (string, error)
}

// Client implements Directory plus the attribute mutations against the
// provider's admin REST API, authenticating with the cached admin
// credential.
type Client struct {
	baseURL string
	realm   string
	tokens  *TokenCache
	client  *http.Client
}

var _ Directory = &Client{}

func NewClient(baseURL, realm, clientID, clientSecret string, timeout time.Duration) *Client {
	tokenURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", baseURL, realm)
	return &Client{
		baseURL: baseURL,
		realm:   realm,
		tokens:  NewTokenCache(tokenURL, clientID, clientSecret, timeout),
		client:  &http.Client{Timeout: timeout},
	}
}

// Tokens exposes the admin credential cache, mainly so callers can force a
// re-fetch.
func (c *Client) Tokens() *TokenCache {
	return c.tokens
}

// GetUserByEmail looks a user up by exact email match.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*UserRepresentation, error) {
	searchURL := fmt.Sprintf("%s/admin/realms/%s/users?email=%s&exact=true",
		c.baseURL, c.realm, url.QueryEscape(email))

	var users []UserRepresentation
	if err := c.getJSON(ctx, searchURL, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, mealcraft_errors.ErrUserNotFound
	}
	return &users[0], nil
}

// GetUsersWithCOI returns the emails of every user subscribed to the given
// community of interest.
func (c *Client) GetUsersWithCOI(ctx context.Context, coi string) ([]string, error) {
	usersURL := fmt.Sprintf("%s/admin/realms/%s/users", c.baseURL, c.realm)

	var users []UserRepresentation
	if err := c.getJSON(ctx, usersURL, &users); err != nil {
		return nil, err
	}

	var emails []string
	for _, user := range users {
		if user.Email == "" {
			continue
		}
		for _, v := range user.Attributes["coi"] {
			if v == coi {
				emails = append(emails, user.Email)
				break
			}
		}
	}
	return emails, nil
}

// GetAccessControlGroupsByEmail reads the user's acg attribute.
func (c *Client) GetAccessControlGroupsByEmail(ctx context.Context, email string) ([]string, error) {
	user, err := c.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Attributes["acg"], nil
}

// GetCommunitiesOfInterestByEmail reads the user's coi attribute.
func (c *Client) GetCommunitiesOfInterestByEmail(ctx context.Context, email string) ([]string, error) {
	user, err := c.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return user.Attributes["coi"], nil
}

// GetRegionByEmail reads the user's region attribute.
func (c *Client) GetRegionByEmail(ctx context.Context, email string) (string, error) {
	user, err := c.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if regions := user.Attributes["region"]; len(regions) > 0 {
		return regions[0], nil
	}
	return "", nil
}

// UpdateUserACGs replaces the user's acg attribute.
func (c *Client) UpdateUserACGs(ctx context.Context, email string, acgs []string) error {
	return c.updateUserAttribute(ctx, email, "acg", acgs)
}

// UpdateUserCOIs replaces the user's coi attribute.
func (c *Client) UpdateUserCOIs(ctx context.Context, email string, cois []string) error {
	return c.updateUserAttribute(ctx, email, "coi", cois)
}

// updateUserAttribute reads the full user representation, replaces one
// attribute, and writes the representation back so other attributes are
// preserved. The admin credential is invalidated afterwards so the next
// read sees fresh server-side state.
func (c *Client) updateUserAttribute(ctx context.Context, email, name string, values []string) error {
	user, err := c.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.Attributes == nil {
		user.Attributes = make(map[string][]string)
	}
	user.Attributes[name] = values

	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(user)
	if err != nil {
		return err
	}

	updateURL := fmt.Sprintf("%s/admin/realms/%s/users/%s", c.baseURL, c.realm, user.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, updateURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to update user attribute %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to update user attribute %s: provider returned %d", name, resp.StatusCode)
	}

	c.tokens.Invalidate()

	logger.Info("Updated user attribute at identity provider",
		zap.String("email", email),
		zap.String("attribute", name),
		zap.Int("values", len(values)))
	return nil
}

// getJSON performs an authenticated GET and decodes the response body.
func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity provider returned %d for %s", resp.StatusCode, rawURL)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
