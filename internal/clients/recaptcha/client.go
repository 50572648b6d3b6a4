package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JanAndriessens/CalyClub-sub002/internal/domain/models"
)

const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Client talks to the reCAPTCHA siteverify endpoint. It carries no timeout
// of its own; callers bound the call through the request context.
type Client struct {
	httpClient *http.Client
	verifyURL  string
	secret     string
}

func New(secret, verifyURL string) *Client {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}

	return &Client{httpClient: http.DefaultClient, verifyURL: verifyURL, secret: secret}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

func (c *Client) Verify(ctx context.Context, token string) (models.RiskAssessment, error) {
	const op = "recaptcha.Verify"

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return models.RiskAssessment{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.RiskAssessment{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.RiskAssessment{}, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.RiskAssessment{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.RiskAssessment{
		Passed: body.Success,
		Score:  body.Score,
		Action: body.Action,
	}, nil
}
