package helpdesk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opsdesk/internal/shared/config"
	"opsdesk/internal/shared/logger"
)

func testConfig(baseURL string) *config.HelpdeskConfig {
	return &config.HelpdeskConfig{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		PageDelayMs:   1,
		BackoffBaseMs: 1,
		BackoffCapMs:  4,
		MaxRetries:    5,
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(testConfig(baseURL), logger.NewLogger())
	require.NoError(t, err)
	return c
}

func writeAgentsPage(w http.ResponseWriter, count, offset int) {
	agents := make([]Agent, count)
	for i := range agents {
		agents[i] = Agent{
			ID:        int64(offset + i + 1),
			FirstName: fmt.Sprintf("Agent%d", offset+i+1),
			Email:     fmt.Sprintf("agent%d@example.com", offset+i+1),
			Active:    true,
		}
	}
	_ = json.NewEncoder(w).Encode(agentsEnvelope{Agents: agents})
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(&config.HelpdeskConfig{APIKey: "key"}, logger.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")

	_, err = NewClient(&config.HelpdeskConfig{BaseURL: "https://desk.example.com"}, logger.NewLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")

	_, err = NewClient(nil, logger.NewLogger())
	require.Error(t, err)
}

func TestListAgents_Pagination(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		require.Equal(t, "/api/v2/agents", r.URL.Path)
		require.Equal(t, "100", r.URL.Query().Get("per_page"))

		switch r.URL.Query().Get("page") {
		case "1":
			writeAgentsPage(w, maxPageSize, 0)
		case "2":
			writeAgentsPage(w, 40, maxPageSize)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	var lastPages, lastRecords int
	agents, err := client.ListAgents(context.Background(), func(pages, records int) {
		lastPages, lastRecords = pages, records
	})
	require.NoError(t, err)

	assert.Len(t, agents, 140)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
	assert.Equal(t, 2, lastPages)
	assert.Equal(t, 140, lastRecords)
	assert.Equal(t, int64(1), agents[0].ID)
	assert.Equal(t, int64(140), agents[139].ID)
}

func TestListAgents_RetriesOn429(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&requests, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeAgentsPage(w, 3, 0)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	agents, err := client.ListAgents(context.Background(), nil)
	require.NoError(t, err)

	// Two 429s plus the success: exactly three requests for the page.
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
	assert.Len(t, agents, 3)
}

func TestListAgents_RateLimitExhausted(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 2
	client, err := NewClient(cfg, logger.NewLogger())
	require.NoError(t, err)

	_, err = client.ListAgents(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsRateLimit(err))

	// Initial attempt plus MaxRetries retries.
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestFetchSatisfactionRating_NotFoundIsAbsence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	resp, err := client.FetchSatisfactionRating(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestFetchSatisfactionRating_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/tickets/42/satisfaction_ratings", r.URL.Path)
		_ = json.NewEncoder(w).Encode(satisfactionEnvelope{
			SatisfactionResponse: SatisfactionResponse{
				ID:       7,
				TicketID: 42,
				Rating:   5,
				Feedback: "great",
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	resp, err := client.FetchSatisfactionRating(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 5, resp.Rating)
}

func TestFetchTicketActivities_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	_, err := client.FetchTicketActivities(context.Background(), 99)
	require.Error(t, err)
	assert.False(t, IsRateLimit(err))
	assert.Contains(t, err.Error(), "ticket activities")
}

func TestListTickets_SendsUpdatedSince(t *testing.T) {
	since := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, since.Format(time.RFC3339), r.URL.Query().Get("updated_since"))
		require.Equal(t, "stats", r.URL.Query().Get("include"))
		_ = json.NewEncoder(w).Encode(ticketsEnvelope{Tickets: []Ticket{
			{ID: 900, Subject: "printer down", Status: 2, Priority: 2, CreatedAt: since, UpdatedAt: since},
		}})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	tickets, err := client.ListTickets(context.Background(), since, nil)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, int64(900), tickets[0].ID)
}

func TestPacingPolicy_BackoffDelay(t *testing.T) {
	p := PacingPolicy{
		BackoffBase: 2 * time.Second,
		BackoffCap:  10 * time.Second,
	}

	assert.Equal(t, 2*time.Second, p.BackoffDelay(0))
	assert.Equal(t, 4*time.Second, p.BackoffDelay(1))
	assert.Equal(t, 8*time.Second, p.BackoffDelay(2))
	// Capped from here on.
	assert.Equal(t, 10*time.Second, p.BackoffDelay(3))
	assert.Equal(t, 10*time.Second, p.BackoffDelay(10))

	// Delays grow monotonically until the cap.
	for i := 1; i < 8; i++ {
		assert.GreaterOrEqual(t, p.BackoffDelay(i), p.BackoffDelay(i-1))
	}
}
