package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/socialai-labs/socialai-gateway/internal/user"
	"github.com/socialai-labs/socialai-gateway/pkg/config"
	pkgerrors "github.com/socialai-labs/socialai-gateway/pkg/errors"
)

const responseBodyReadLimit int64 = 1024

// ErrAlreadyExists reports a 409 from the profile upsert endpoint: the
// backend already holds a record for this identity. Callers in the setup
// flow treat this as a successful terminal outcome.
var ErrAlreadyExists = errors.New("identity already exists on backend")

var errBaseURLRequired = errors.New("identity backend base URL is required")

// Client talks to the remote identity backend over HTTP JSON.
type Client struct {
	httpClient *http.Client
	baseURL    string
	loginPath  string
	resetPath  string
	createPath string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the identity backend client from configuration.
//
// The default HTTP client carries no local deadline: the backend's own
// timeout behavior governs in-flight calls.
func NewClient(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		loginPath:  cfg.LoginPath,
		resetPath:  cfg.ResetPasswordPath,
		createPath: cfg.CreateUserPath,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// profileRecord is the flat wire shape the backend expects. Field names
// follow the backend's own convention.
type profileRecord struct {
	ID           string `json:"id,omitempty"`
	Nome         string `json:"nome"`
	Email        string `json:"email"`
	Senha        string `json:"senha"`
	Empresa      string `json:"empresa"`
	Segmentos    string `json:"segmentos"`
	SubSegmentos string `json:"sub_segmentos"`
	Voice        string `json:"voice"`
	Descricao    string `json:"descricao"`
	CorPrimaria  string `json:"cor_primaria"`
	Target       string `json:"target"`
}

type backendError struct {
	Msg string `json:"msg"`
}

// Login authenticates against the backend and returns the populated user.
func (c *Client) Login(ctx context.Context, email, password string) (user.User, error) {
	payload := map[string]string{"email": email, "senha": password}

	resp, err := c.post(ctx, c.loginPath, payload)
	if err != nil {
		return user.User{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		var rec profileRecord
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return user.User{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode login response")
		}
		return recordToUser(rec), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound:
		return user.User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, backendMessage(resp.Body, "invalid email or password"))
	default:
		return user.User{}, c.unexpectedStatus(resp, "login")
	}
}

// ResetPassword asks the backend to start a password reset for the email.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	resp, err := c.post(ctx, c.resetPath, map[string]string{"email": email})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, backendMessage(resp.Body, "no account found for that email"))
	default:
		return c.unexpectedStatus(resp, "reset password")
	}
}

// UpsertProfile sends the flat profile record for durable persistence.
// A 409 response means the identity already exists and surfaces as
// ErrAlreadyExists.
func (c *Client) UpsertProfile(ctx context.Context, u user.User) error {
	resp, err := c.post(ctx, c.createPath, userToRecord(u))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusConflict:
		return ErrAlreadyExists
	default:
		return c.unexpectedStatus(resp, "upsert profile")
	}
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal backend request")
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build backend request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reach identity backend")
	}
	return resp, nil
}

func (c *Client) unexpectedStatus(resp *http.Response, op string) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	return pkgerrors.Wrap(
		pkgerrors.CodeDependency,
		fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		op+" request failed",
	)
}

func backendMessage(body io.Reader, fallback string) string {
	var be backendError
	if err := json.NewDecoder(io.LimitReader(body, responseBodyReadLimit)).Decode(&be); err == nil {
		if msg := strings.TrimSpace(be.Msg); msg != "" {
			return msg
		}
	}
	return fallback
}

func userToRecord(u user.User) profileRecord {
	rec := profileRecord{
		ID:      u.ID,
		Nome:    u.Name,
		Email:   u.Email,
		Senha:   u.Password,
		Empresa: u.BusinessName,
	}
	if u.BusinessInfo != nil {
		rec.Segmentos = u.BusinessInfo.Industry
		rec.SubSegmentos = u.BusinessInfo.SubIndustry
		rec.Descricao = u.BusinessInfo.Description
	}
	if u.BrandData != nil {
		rec.Voice = u.BrandData.BrandVoice
		rec.Target = u.BrandData.TargetAudience
		if len(u.BrandData.BrandColors) > 0 {
			rec.CorPrimaria = u.BrandData.BrandColors[0]
		}
	}
	return rec
}

func recordToUser(rec profileRecord) user.User {
	u := user.User{
		ID:           rec.ID,
		Name:         rec.Nome,
		Email:        rec.Email,
		BusinessName: rec.Empresa,
	}
	if rec.Segmentos != "" || rec.SubSegmentos != "" || rec.Descricao != "" {
		u.BusinessInfo = &user.BusinessInfo{
			Industry:    rec.Segmentos,
			SubIndustry: rec.SubSegmentos,
			Description: rec.Descricao,
		}
	}
	if rec.Voice != "" || rec.Target != "" || rec.CorPrimaria != "" {
		brand := &user.BrandData{
			BrandVoice:     rec.Voice,
			TargetAudience: rec.Target,
		}
		if rec.CorPrimaria != "" {
			brand.BrandColors = []string{rec.CorPrimaria}
		}
		u.BrandData = brand
	}

	// A record the backend stored durably has by definition finished
	// onboarding, which is the only path that creates it there.
	u.SetupComplete = u.BusinessName != "" &&
		u.BusinessInfo != nil && u.BusinessInfo.Industry != "" &&
		u.BrandData != nil && u.BrandData.BrandVoice != "" && u.BrandData.TargetAudience != ""

	return u
}
