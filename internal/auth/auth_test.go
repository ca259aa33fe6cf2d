package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/stoptracker/internal/auth"
)

func TestIssueAndParse(t *testing.T) {
	token, err := auth.IssueToken("secret", "driver-1", time.Hour)
	require.NoError(t, err)

	claims, err := auth.ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "driver-1", claims.Subject)

	_, err = auth.ParseToken("other", token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = auth.IssueToken("", "driver-1", time.Hour)
	assert.Error(t, err)
}

func TestIssueToken_DefaultTTL(t *testing.T) {
	token, err := auth.IssueToken("secret", "driver-1", -time.Hour)
	require.NoError(t, err)

	_, err = auth.ParseToken("secret", token)
	assert.NoError(t, err)
}

func TestMiddleware(t *testing.T) {
	valid, err := auth.IssueToken("secret", "driver-1", time.Hour)
	require.NoError(t, err)

	type args struct {
		secret string
		header string
		query  string
	}

	type testCase struct {
		name       string
		args       args
		wantStatus int
		wantScope  string
	}

	tests := []testCase{
		{
			name:       "NoSecretUsesFallback",
			args:       args{},
			wantStatus: http.StatusOK,
			wantScope:  "local",
		},
		{
			name:       "MissingToken",
			args:       args{secret: "secret"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "MalformedHeader",
			args:       args{secret: "secret", header: "Token " + valid},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "BadSignature",
			args:       args{secret: "other", header: "Bearer " + valid},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Header",
			args:       args{secret: "secret", header: "Bearer " + valid},
			wantStatus: http.StatusOK,
			wantScope:  "driver-1",
		},
		{
			name:       "QueryParam",
			args:       args{secret: "secret", query: valid},
			wantStatus: http.StatusOK,
			wantScope:  "driver-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotScope string

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotScope, _ = auth.ScopeFrom(r.Context())
			})

			target := "/"
			if tt.args.query != "" {
				target += "?token=" + tt.args.query
			}

			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.args.header != "" {
				req.Header.Set("Authorization", tt.args.header)
			}

			rec := httptest.NewRecorder()
			auth.Middleware(tt.args.secret, "local", zap.NewNop())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantScope, gotScope)
		})
	}
}
