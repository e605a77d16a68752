package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMailer_SendPortalLink(t *testing.T) {
	t.Run("posts the rendered message with the api key", func(t *testing.T) {
		var gotAuth string
		var gotBody map[string]any

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &gotBody))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		m := NewHTTPMailer(srv.URL, "mail-key", "no-reply@craftbooks.example")
		err := m.SendPortalLink(context.Background(), PortalLinkMessage{
			To:          "client@example.com",
			CompanyName: "Acme Plumbing",
			Link:        "https://portal.example.com/portal?token=abc",
		})
		require.NoError(t, err)

		assert.Equal(t, "Bearer mail-key", gotAuth)
		assert.Equal(t, "no-reply@craftbooks.example", gotBody["from"])
		assert.Equal(t, "client@example.com", gotBody["to"])
		assert.Equal(t, "Acme Plumbing has shared documents with you", gotBody["subject"])
		assert.Contains(t, gotBody["html"], "https://portal.example.com/portal?token=abc")
	})

	t.Run("falls back to a generic subject without a company name", func(t *testing.T) {
		var gotBody map[string]any

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(raw, &gotBody))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		m := NewHTTPMailer(srv.URL, "mail-key", "no-reply@craftbooks.example")
		err := m.SendPortalLink(context.Background(), PortalLinkMessage{
			To:   "client@example.com",
			Link: "https://portal.example.com/portal?token=abc",
		})
		require.NoError(t, err)

		assert.Equal(t, "Your portal access link", gotBody["subject"])
	})

	t.Run("non-2xx response is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer srv.Close()

		m := NewHTTPMailer(srv.URL, "mail-key", "no-reply@craftbooks.example")
		err := m.SendPortalLink(context.Background(), PortalLinkMessage{To: "client@example.com"})
		assert.ErrorContains(t, err, "422")
	})
}

func TestLogMailer(t *testing.T) {
	err := LogMailer{}.SendPortalLink(context.Background(), PortalLinkMessage{
		To:   "client@example.com",
		Link: "https://portal.example.com/portal?token=abc",
	})
	assert.NoError(t, err)
}
