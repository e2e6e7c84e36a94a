package achievements

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(store Store, userID uuid.UUID) *fiber.App {
	tracker := NewTracker(store)
	handler := NewHandler(tracker, NewProjection(store), store)

	app := fiber.New()

	authed := app.Group("/", func(c *fiber.Ctx) error {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": userID.String(),
		})
		c.Locals("user", token)
		return c.Next()
	})
	authed.Get("/progress", handler.GetProgress)
	authed.Get("/notifications", handler.GetNotifications)
	authed.Post("/notifications/read", handler.MarkNotificationsRead)
	authed.Post("/track", handler.TrackAction)

	app.Get("/leaderboard", handler.GetLeaderboard)
	return app
}

func decodeBody(t *testing.T, body io.Reader, dst interface{}) {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func TestGetProgressEndpoint(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.SeedAchievements(DefaultCatalog())
	require.NoError(t, err)
	app := testApp(store, uuid.New())

	resp, err := app.Test(httptest.NewRequest("GET", "/progress", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var summary ProgressSummaryResponse
	decodeBody(t, resp.Body, &summary)
	assert.Equal(t, 1, summary.Level)
	assert.Equal(t, len(DefaultCatalog()), summary.TotalAchievements)
}

func TestProgressRequiresAuth(t *testing.T) {
	store := NewMemoryStore()
	handler := NewHandler(NewTracker(store), NewProjection(store), store)
	app := fiber.New()
	app.Get("/progress", handler.GetProgress)

	resp, err := app.Test(httptest.NewRequest("GET", "/progress", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTrackActionEndpoint(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.SeedAchievements(DefaultCatalog())
	require.NoError(t, err)
	userID := uuid.New()
	app := testApp(store, userID)

	req := httptest.NewRequest("POST", "/track", strings.NewReader(`{"action_type":"map_view"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stats, err := store.GetStats(userID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MapViews)
}

func TestTrackActionRejectsUnknownType(t *testing.T) {
	store := NewMemoryStore()
	app := testApp(store, uuid.New())

	req := httptest.NewRequest("POST", "/track", strings.NewReader(`{"action_type":"report_created"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestNotificationEndpoints(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.SeedAchievements(DefaultCatalog())
	require.NoError(t, err)
	userID := uuid.New()
	app := testApp(store, userID)

	NewTracker(store).TrackReportCreated(userID, 40.0, -73.0, "other", "low")

	resp, err := app.Test(httptest.NewRequest("GET", "/notifications", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Count int `json:"count"`
	}
	decodeBody(t, resp.Body, &payload)
	assert.Equal(t, 1, payload.Count)

	markReq := httptest.NewRequest("POST", "/notifications/read", nil)
	markResp, err := app.Test(markReq)
	require.NoError(t, err)
	defer markResp.Body.Close()
	require.Equal(t, fiber.StatusOK, markResp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/notifications", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	decodeBody(t, resp.Body, &payload)
	assert.Zero(t, payload.Count)
}

func TestLeaderboardEndpointIsPublic(t *testing.T) {
	store := NewMemoryStore()
	userID := uuid.New()
	store.SetUsername(userID, "alice")
	stats, err := store.GetOrCreateStats(userID)
	require.NoError(t, err)
	stats.TotalPoints = 75
	require.NoError(t, store.SaveStats(stats))

	app := testApp(store, uuid.New())

	resp, err := app.Test(httptest.NewRequest("GET", "/leaderboard?metric=points", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var board LeaderboardResponse
	decodeBody(t, resp.Body, &board)
	require.Equal(t, 1, board.Count)
	assert.Equal(t, "alice", board.Entries[0].Username)
	assert.Equal(t, 75, board.Entries[0].Score)
}
