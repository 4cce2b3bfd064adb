package httpx_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/safescrow/dashboard/pkg/cryptox"
	"github.com/safescrow/dashboard/pkg/httpx"
	"github.com/safescrow/dashboard/pkg/jwtx"
)

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", tc.header)
		got, ok := httpx.BearerToken(r)
		require.Equal(t, tc.ok, ok, tc.header)
		require.Equal(t, tc.want, got, tc.header)
	}
}

func TestAuthnMiddleware(t *testing.T) {
	t.Parallel()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	keys.AddSigner(signer)

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.ClaimsFrom(r.Context())
		require.True(t, ok)
		httpx.WriteJSON(w, http.StatusOK, map[string]string{
			"user":  httpx.UserID(r.Context()),
			"email": claims.Email,
		})
	}), httpx.AuthnMiddleware(jwtx.NewVerifierEdDSA(keys, "test", 0)))

	serve := func(authz string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if authz != "" {
			r.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	t.Run("valid token", func(t *testing.T) {
		tok, err := signer.Sign(jwtx.NewAccessClaims("user-1", "ada@example.com", "test", time.Minute, time.Now()))
		require.NoError(t, err)

		rec := serve("Bearer " + tok)
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"user":"user-1","email":"ada@example.com"}`, rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		rec := serve("")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)

		var body httpx.ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "invalid_token", body.Error)
	})

	t.Run("expired token", func(t *testing.T) {
		tok, err := signer.Sign(jwtx.NewAccessClaims("user-1", "", "test", time.Minute, time.Now().Add(-time.Hour)))
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, serve("Bearer "+tok).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, serve("Bearer garbage").Code)
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Email string `json:"email"`
	}

	decode := func(body string) (payload, error) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := httpx.DecodeJSON(httptest.NewRecorder(), r, &p)
		return p, err
	}

	p, err := decode(`{"email":"a@b.c"}`)
	require.NoError(t, err)
	require.Equal(t, "a@b.c", p.Email)

	_, err = decode(`{"email":"a@b.c","admin":true}`)
	require.Error(t, err)

	_, err = decode(`{"email":"a"} {"email":"b"}`)
	require.Error(t, err)

	_, err = decode(`not json`)
	require.Error(t, err)
}

func TestWriteJSON_NoCache(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	body, _ := io.ReadAll(rec.Body)
	require.JSONEq(t, `{"n":1}`, string(body))
}
