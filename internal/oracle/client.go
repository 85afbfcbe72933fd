// Package oracle is the client for the external solution oracle: the
// service that owns correct answers, keyed by question id. The oracle is
// treated as opaque and potentially slow or unavailable; every failure maps
// to ErrUpstream.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pacewise/pacewise-progress/internal/grading"
)

// ErrUpstream covers oracle timeouts, transport errors and non-2xx replies.
// Callers do not retry inline.
var ErrUpstream = errors.New("solution oracle unavailable")

const requestTimeout = 15 * time.Second

type Client struct {
	BaseURL string
	HTTP    *http.Client

	issuer string
	hmac   []byte
}

// New builds a client that authenticates with short-lived HS256 service
// tokens signed with the shared secret.
func New(baseURL, issuer, secret string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: requestTimeout},
		issuer:  issuer,
		hmac:    []byte(secret),
	}
}

type solutionsRequest struct {
	CourseInstanceID string   `json:"course_instance_id"`
	AssessmentID     string   `json:"assessment_id"`
	QuestionIDs      []string `json:"question_ids"`
}

// Solutions fetches the correct solutions for the given question ids,
// returned as a map keyed by question id.
func (c *Client) Solutions(ctx context.Context, courseInstanceID, assessmentID string, questionIDs []string) (map[string]grading.Solution, error) {
	body, err := json.Marshal(solutionsRequest{
		CourseInstanceID: courseInstanceID,
		AssessmentID:     assessmentID,
		QuestionIDs:      questionIDs,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/solutions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	tok, err := c.serviceToken()
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out map[string]grading.Solution
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return out, nil
}

func (c *Client) serviceToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.issuer,
		Subject:   c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Minute)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.hmac)
}
