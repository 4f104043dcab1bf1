package portalclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oliverpayne/rotawatch/internal/config"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	loggedIn := false

	mux.HandleFunc("/login/providers", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "staff@example.com", r.Form.Get("email"))
	})

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("password") != "hunter2" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		loggedIn = true
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
	})

	mux.HandleFunc("/staffPortal/schedule", func(w http.ResponseWriter, r *http.Request) {
		if !loggedIn {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("offset") == "0" {
			// Second row repeats on the next page; the client must
			// de-duplicate.
			fmt.Fprint(w, `{
				"rows": [
					{"employeeName": "Alice Smith", "date": "Mon 09 Jun", "startTime": "09:00", "endTime": "17:00", "role": "FAB Serving"},
					{"employeeName": "Bob Jones", "date": "Mon 09 Jun", "startTime": "12:00", "endTime": "20:00", "role": "Ushering"}
				],
				"hasMore": true,
				"nextOffset": 2
			}`)
			return
		}
		fmt.Fprint(w, `{
			"rows": [
				{"employeeName": "Bob Jones", "date": "Mon 09 Jun", "startTime": "12:00", "endTime": "20:00", "role": "Ushering"},
				{"employeeName": "Carol White", "date": "Tue 10 Jun", "startTime": "10:00", "endTime": "18:00", "role": "Duty Manager"}
			],
			"hasMore": false
		}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := &config.Config{
		PortalBaseURL:               baseURL,
		PortalRequestTimeoutSeconds: 5,
		CutoffWeekday:               "Thursday",
	}
	creds := config.PortalCredentials{Email: "staff@example.com", Password: "hunter2"}

	client, err := NewClient(cfg, creds, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestFetchShifts_AllStaff(t *testing.T) {
	srv := testServer(t)
	client := testClient(t, srv.URL)

	shifts, err := client.FetchShifts(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, shifts, 3, "duplicate rows across pages are dropped")
	assert.Equal(t, "Alice Smith", shifts[0].StaffName)
	assert.Equal(t, "Mon 09 Jun", shifts[0].DateLabel)
	assert.Equal(t, "09:00", shifts[0].Start)
	assert.Equal(t, "FAB Serving", shifts[0].Role)
}

func TestFetchShifts_NameFilter(t *testing.T) {
	srv := testServer(t)
	client := testClient(t, srv.URL)

	shifts, err := client.FetchShifts(context.Background(), "carol")
	require.NoError(t, err)

	require.Len(t, shifts, 1)
	assert.Equal(t, "Carol White", shifts[0].StaffName)
}

func TestFetchShifts_BadCredentials(t *testing.T) {
	srv := testServer(t)
	cfg := &config.Config{
		PortalBaseURL:               srv.URL,
		PortalRequestTimeoutSeconds: 5,
		CutoffWeekday:               "Thursday",
	}
	client, err := NewClient(cfg, config.PortalCredentials{Email: "staff@example.com", Password: "wrong"}, zap.NewNop())
	require.NoError(t, err)

	_, err = client.FetchShifts(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
}

func TestFetchShifts_MalformedFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Site structure change: HTML where JSON is expected
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	t.Cleanup(srv.Close)

	client := testClient(t, srv.URL)
	_, err := client.FetchShifts(context.Background(), "")
	require.Error(t, err)
}
