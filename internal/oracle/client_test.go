package oracle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacewise/pacewise-progress/internal/grading"
	"github.com/pacewise/pacewise-progress/internal/oracle"
)

const testSecret = "test-secret"

func TestSolutionsFetchesAndAuthenticates(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]grading.Solution{
			"q1": {QuestionID: "q1", Type: grading.TypeMCQ, CorrectChoiceID: "C1"},
		})
	}))
	defer srv.Close()

	c := oracle.New(srv.URL, "pacewise-progress", testSecret)
	sols, err := c.Solutions(context.Background(), "course-1", "asmt-1", []string{"q1"})
	require.NoError(t, err)

	assert.Equal(t, "/solutions", gotPath)
	assert.Equal(t, "course-1", gotBody["course_instance_id"])
	assert.Equal(t, "asmt-1", gotBody["assessment_id"])

	require.Len(t, sols, 1)
	assert.Equal(t, "C1", sols["q1"].CorrectChoiceID)

	// The bearer token is a valid HS256 service JWT.
	require.True(t, strings.HasPrefix(gotAuth, "Bearer "))
	tok, err := jwt.Parse(strings.TrimPrefix(gotAuth, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, tok.Valid)
	iss, err := tok.Claims.GetIssuer()
	require.NoError(t, err)
	assert.Equal(t, "pacewise-progress", iss)
}

func TestSolutionsNonSuccessIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := oracle.New(srv.URL, "pacewise-progress", testSecret)
	_, err := c.Solutions(context.Background(), "course-1", "asmt-1", []string{"q1"})
	assert.ErrorIs(t, err, oracle.ErrUpstream)
}

func TestSolutionsUnreachableIsUpstreamError(t *testing.T) {
	c := oracle.New("http://127.0.0.1:1", "pacewise-progress", testSecret)
	_, err := c.Solutions(context.Background(), "course-1", "asmt-1", []string{"q1"})
	assert.ErrorIs(t, err, oracle.ErrUpstream)
}
