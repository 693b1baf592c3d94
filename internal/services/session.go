// Package services contains the HTTP clients the storefront app uses to talk
// to the backend: session/auth, orders, coupons and profile. They implement
// the collaborator contracts of the checkout and ordersync packages.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// AuthTokenName is the key the session stores its bearer token under,
// matching what the order sync channel asks for.
const AuthTokenName = "auth_token"

// ErrNotAuthenticated is returned when a request needs a session token and
// none is held.
var ErrNotAuthenticated = errors.New("session has no auth token")

// Session holds the backend base URL and the bearer token obtained at login.
// It doubles as the secure token store the order sync channel reads from.
type Session struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewSession builds a session against the given backend base URL.
func NewSession(baseURL string) *Session {
	return &Session{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// Login authenticates with phone and password and stores the bearer token.
func (s *Session) Login(ctx context.Context, phone, password string) error {
	payload, _ := json.Marshal(map[string]string{
		"phone":    phone,
		"password": password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var decoded loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if decoded.Token == "" {
		return errors.New("login response has no token")
	}

	s.mu.Lock()
	s.token = decoded.Token
	s.mu.Unlock()
	return nil
}

// Logout drops the stored token.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Get implements the token store contract of the order sync channel.
func (s *Session) Get(name string) (string, bool) {
	if name != AuthTokenName {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// do performs an authenticated JSON request and decodes the response body
// into out when it is non-nil.
func (s *Session) do(ctx context.Context, method, path string, body, out any) (int, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return 0, ErrNotAuthenticated
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
