package ledgersdk

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	t.Run("detail", func(t *testing.T) {
		e := parseErrorResponse(http.StatusUnauthorized, []byte(`{"detail":"Given token not valid","code":"token_not_valid"}`))
		require.Equal(t, "Given token not valid", e.Detail)
		require.Empty(t, e.FieldErrors)
		require.True(t, e.IsAuthError())
		require.Equal(t, "HTTP 401: Given token not valid", e.Error())
	})

	t.Run("error key", func(t *testing.T) {
		e := parseErrorResponse(http.StatusUnauthorized, []byte(`{"error":"Invalid credentials."}`))
		require.Equal(t, "Invalid credentials.", e.Message())
		require.Empty(t, e.FieldErrors)
	})

	t.Run("field errors", func(t *testing.T) {
		e := parseErrorResponse(http.StatusBadRequest, []byte(`{
			"username": ["A user with that username already exists."],
			"non_field_errors": ["Passwords do not match."],
			"email": "Enter a valid email address."
		}`))
		require.Empty(t, e.Detail)
		require.True(t, e.IsValidation())
		require.Equal(t, "Passwords do not match.", e.Message())
		require.Equal(t, []string{"Enter a valid email address."}, e.FieldErrors["email"])
		require.Equal(t, "HTTP 400: validation failed: email, non_field_errors, username", e.Error())
	})

	t.Run("not json", func(t *testing.T) {
		body := []byte("<html>Bad Gateway</html>")
		e := parseErrorResponse(http.StatusBadGateway, body)
		require.Empty(t, e.Detail)
		require.Equal(t, body, e.Body)
		require.Equal(t, "HTTP 502: Bad Gateway", e.Error())
		require.False(t, e.IsValidation())
	})

	t.Run("non string values ignored", func(t *testing.T) {
		e := parseErrorResponse(http.StatusBadRequest, []byte(`{"detail":{"nested":true},"count":3}`))
		require.Empty(t, e.Detail)
		require.Empty(t, e.FieldErrors)
	})
}

func TestFailureEnvelope(t *testing.T) {
	t.Parallel()

	validation := parseErrorResponse(http.StatusBadRequest, []byte(`{"name":["This field is required."]}`))

	t.Run("fields kept when requested", func(t *testing.T) {
		env := failure[int](fmt.Errorf("wrapped: %w", validation), "Failed", true)
		require.False(t, env.Success)
		require.Equal(t, "Failed", env.Error)
		require.Equal(t, map[string][]string{"name": {"This field is required."}}, env.Errors)
	})

	t.Run("fields dropped otherwise", func(t *testing.T) {
		env := failure[int](validation, "Failed", false)
		require.Nil(t, env.Errors)
	})

	t.Run("request error uses fallback", func(t *testing.T) {
		reqErr := &RequestError{Op: "failed to send request", Err: errors.New("connection refused")}
		env := failure[int](fmt.Errorf("login: %w", reqErr), "Failed", true)
		require.Equal(t, "Failed", env.Error)
		require.Nil(t, env.Errors)
	})

	t.Run("other errors keep their text", func(t *testing.T) {
		env := failure[int](ErrInvalidChallenge, "Failed", false)
		require.Equal(t, ErrInvalidChallenge.Error(), env.Error)
	})

	t.Run("api error without message uses fallback", func(t *testing.T) {
		env := failure[int](&APIError{StatusCode: http.StatusInternalServerError}, "Failed to fetch", false)
		require.Equal(t, "Failed to fetch", env.Error)
	})
}
