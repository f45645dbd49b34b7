package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/famfit/ai"
	"github.com/cppla/famfit/config"
	"github.com/cppla/famfit/models"
	"github.com/cppla/famfit/store"
	"github.com/cppla/famfit/utils"
)

const testSecret = "test-secret"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  store.Store
	token  string
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		GinMode:              "test",
		AllowedOrigins:       []string{"*"},
		RateLimitPerMinute:   100000,
		AIRateLimitPerMinute: 100000,
		JWTSecret:            testSecret,
		TokenLifetimeHours:   1,
	}
}

func newTestServer(t *testing.T, cfg config.AppConfig, s store.Store) *testServer {
	t.Helper()
	if s == nil {
		s = store.NewMemory()
	}
	gateway := ai.NewGateway(nil, nil)
	return &testServer{t: t, router: SetupRouter(cfg, s, gateway, nil, nil), store: s}
}

func (ts *testServer) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

func (ts *testServer) createUser(username string) models.User {
	ts.t.Helper()
	rec, env := ts.do(http.MethodPost, "/api/users", gin.H{
		"username": username,
		"password": "secret123",
		"name":     strings.ToUpper(username[:1]) + username[1:],
		"role":     "parent",
	})
	require.Equal(ts.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.User](ts.t, env)
}

func idPath(prefix string, id uint, suffix string) string {
	return prefix + "/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)

	rec, env := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec, _ = ts.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "famfit_http_requests_total")

	rec, env = ts.do(http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 40400, env.Code)
}

func TestUsersAPI(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)

	t.Run("create returns 201 without the password", func(t *testing.T) {
		rec, env := ts.do(http.MethodPost, "/api/users", gin.H{
			"username": "sarah",
			"password": "secret123",
			"name":     "Sarah <b>Johnson</b>",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		body := strings.ToLower(rec.Body.String())
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "secret123")

		u := decode[models.User](t, env)
		assert.Equal(t, uint(1), u.ID)
		assert.Equal(t, "Sarah Johnson", u.Name)
		assert.Equal(t, "parent", u.Role)

		rec, env = ts.do(http.MethodGet, "/api/users/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")
		assert.Equal(t, "sarah", decode[models.User](t, env).Username)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPost, "/api/users", gin.H{"username": "SARAH", "password": "secret123", "name": "S"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid body is rejected before the store", func(t *testing.T) {
		before, err := ts.store.ListUsers(context.Background())
		require.NoError(t, err)

		for _, body := range []any{
			gin.H{"username": "emma", "name": "Emma"},
			gin.H{"username": "emma", "password": "123", "name": "Emma"},
			gin.H{"username": "emma", "password": "secret123", "name": "Emma", "familyId": 0},
			`{"username":`,
		} {
			rec, env := ts.do(http.MethodPost, "/api/users", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.NotZero(t, env.Code)
		}

		after, err := ts.store.ListUsers(context.Background())
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("unknown and malformed ids", func(t *testing.T) {
		rec, _ := ts.do(http.MethodGet, "/api/users/999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec, _ = ts.do(http.MethodGet, "/api/users/abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec, _ = ts.do(http.MethodPatch, "/api/users/999", gin.H{"name": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("patch merges fields", func(t *testing.T) {
		rec, env := ts.do(http.MethodPatch, "/api/users/1", gin.H{"role": "Child"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		u := decode[models.User](t, env)
		assert.Equal(t, "child", u.Role)
		assert.Equal(t, "Sarah Johnson", u.Name)
	})
}

func TestConcurrentCreateUserSameUsername(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	body := `{"username":"sarah","password":"secret123","name":"Sarah"}`

	const n = 16
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			ts.router.ServeHTTP(rec, req)
			codes[i] = rec.Code
		}(i)
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
			continue
		}
		assert.Equal(t, http.StatusConflict, code)
	}
	assert.Equal(t, 1, created)

	users, err := ts.store.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestFamiliesAPI(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)

	rec, env := ts.do(http.MethodPost, "/api/families", gin.H{"name": "The Johnsons"})
	require.Equal(t, http.StatusCreated, rec.Code)
	family := decode[models.Family](t, env)

	rec, _ = ts.do(http.MethodPost, "/api/users", gin.H{
		"username": "sarah", "password": "secret123", "name": "Sarah", "familyId": family.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	ts.createUser("loner")

	rec, env = ts.do(http.MethodGet, idPath("/api/families", family.ID, "/users"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	members := decode[[]models.User](t, env)
	require.Len(t, members, 1)
	assert.Equal(t, "sarah", members[0].Username)

	rec, env = ts.do(http.MethodGet, "/api/users?familyId="+strconv.FormatUint(uint64(family.ID), 10), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, env), 1)

	rec, _ = ts.do(http.MethodGet, "/api/families/42/users", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env = ts.do(http.MethodGet, idPath("/api/families", family.ID, "/stats"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decode[map[string]any](t, env)
	assert.Len(t, stats["members"], 1)
}

func TestChallengeProgressAPI(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	user := ts.createUser("sarah")

	now := time.Now()
	rec, env := ts.do(http.MethodPost, "/api/challenges", gin.H{
		"title":     "10K Steps Week",
		"startDate": now.Add(-time.Hour).Format(time.RFC3339),
		"endDate":   now.Add(7 * 24 * time.Hour).Format(time.RFC3339),
		"goalType":  "steps",
		"goalValue": 10000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	challenge := decode[models.Challenge](t, env)

	rec, env = ts.do(http.MethodPost, "/api/user-challenges", gin.H{
		"userId": user.ID, "challengeId": challenge.ID, "progress": 7500,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	uc := decode[models.UserChallenge](t, env)
	assert.False(t, uc.Completed)

	t.Run("crossing the goal completes", func(t *testing.T) {
		rec, env := ts.do(http.MethodPut, idPath("/api/user-challenges", uc.ID, "/progress"), gin.H{"progress": 10500})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := decode[models.UserChallenge](t, env)
		assert.Equal(t, 10500, got.Progress)
		assert.True(t, got.Completed)
	})

	t.Run("missing progress is a validation error", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPut, idPath("/api/user-challenges", uc.ID, "/progress"), gin.H{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		stored, err := ts.store.GetUserChallenge(context.Background(), uc.ID)
		require.NoError(t, err)
		assert.Equal(t, 10500, stored.Progress)
	})

	t.Run("zero progress is accepted", func(t *testing.T) {
		rec, env := ts.do(http.MethodPut, idPath("/api/user-challenges", uc.ID, "/progress"), gin.H{"progress": 0})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.False(t, decode[models.UserChallenge](t, env).Completed)
	})

	t.Run("unknown participation is 404", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPut, "/api/user-challenges/999/progress", gin.H{"progress": 1})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("active filter", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPost, "/api/challenges", gin.H{
			"title":     "Old",
			"startDate": now.Add(-48 * time.Hour).Format(time.RFC3339),
			"endDate":   now.Add(-24 * time.Hour).Format(time.RFC3339),
			"goalType":  "steps",
			"goalValue": 1,
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, env := ts.do(http.MethodGet, "/api/challenges?active=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		active := decode[[]models.Challenge](t, env)
		require.Len(t, active, 1)
		assert.Equal(t, "10K Steps Week", active[0].Title)

		rec, env = ts.do(http.MethodGet, "/api/challenges", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.Challenge](t, env), 2)
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPost, "/api/challenges", gin.H{
			"title":     "Backwards",
			"startDate": now.Format(time.RFC3339),
			"endDate":   now.Add(-time.Hour).Format(time.RFC3339),
			"goalType":  "steps",
			"goalValue": 1,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMealsAPI(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	user := ts.createUser("sarah")

	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.Local)
	for _, m := range []struct {
		name string
		ts   time.Time
	}{
		{"late", day.Add(23*time.Hour + 59*time.Minute + 59*time.Second)},
		{"yesterday", day.Add(-time.Second)},
		{"breakfast", day.Add(8 * time.Hour)},
		{"tomorrow", day.Add(24 * time.Hour)},
	} {
		rec, _ := ts.do(http.MethodPost, "/api/meals", gin.H{
			"userId": user.ID, "name": m.name, "calories": 300, "protein": 10,
			"timestamp": m.ts.Format(time.RFC3339), "mealType": "snack",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec, env := ts.do(http.MethodGet, "/api/meals?date=2024-06-15&userId="+strconv.FormatUint(uint64(user.ID), 10), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	meals := decode[[]models.Meal](t, env)
	require.Len(t, meals, 2)
	assert.Equal(t, "breakfast", meals[0].Name)
	assert.Equal(t, "late", meals[1].Name)

	t.Run("bad date and missing user", func(t *testing.T) {
		rec, _ := ts.do(http.MethodGet, "/api/meals?userId=1&date=15-06-2024", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec, _ = ts.do(http.MethodGet, "/api/meals", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid meal leaves the store unchanged", func(t *testing.T) {
		before, _ := ts.store.ListMeals(context.Background(), user.ID)
		rec, _ := ts.do(http.MethodPost, "/api/meals", gin.H{"userId": user.ID, "name": "x", "calories": -5})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec, _ = ts.do(http.MethodPost, "/api/meals", gin.H{"userId": user.ID, "name": "x", "mealType": "brunch"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		after, _ := ts.store.ListMeals(context.Background(), user.ID)
		assert.Len(t, after, len(before))
	})
}

func TestWorkoutsAPI(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	user := ts.createUser("sarah")

	rec, env := ts.do(http.MethodPost, "/api/workouts", gin.H{
		"title": "HIIT", "duration": 30, "intensity": "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	workout := decode[models.Workout](t, env)

	rec, _ = ts.do(http.MethodPost, "/api/workouts", gin.H{"title": "No duration"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	soon := time.Now().Add(time.Hour).Format(time.RFC3339)
	later := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	var ids []uint
	for _, when := range []string{later, past, soon} {
		rec, env := ts.do(http.MethodPost, "/api/user-workouts", gin.H{
			"userId": user.ID, "workoutId": workout.ID, "scheduledFor": when,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		ids = append(ids, decode[models.UserWorkout](t, env).ID)
	}

	upcomingPath := "/api/user-workouts?upcoming=true&userId=" + strconv.FormatUint(uint64(user.ID), 10)
	rec, env = ts.do(http.MethodGet, upcomingPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	upcoming := decode[[]models.UserWorkout](t, env)
	require.Len(t, upcoming, 2)
	assert.Equal(t, ids[2], upcoming[0].ID)
	assert.Equal(t, ids[0], upcoming[1].ID)

	rec, env = ts.do(http.MethodPut, idPath("/api/user-workouts", ids[2], "/complete"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	done := decode[models.UserWorkout](t, env)
	assert.True(t, done.Completed)
	assert.NotNil(t, done.CompletedAt)

	rec, env = ts.do(http.MethodGet, upcomingPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.UserWorkout](t, env), 1)

	rec, _ = ts.do(http.MethodPut, "/api/user-workouts/999/complete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthMetricsAPI(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	user := ts.createUser("sarah")
	uid := strconv.FormatUint(uint64(user.ID), 10)

	rec, _ := ts.do(http.MethodGet, "/api/health-metrics/latest?userId="+uid, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	for i, date := range []string{"2024-06-10T08:00:00Z", "2024-06-12T08:00:00Z", "2024-06-11T08:00:00Z"} {
		rec, _ := ts.do(http.MethodPost, "/api/health-metrics", gin.H{
			"userId": user.ID, "date": date, "steps": 1000 * (i + 1), "activeMinutes": 30,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec, env := ts.do(http.MethodGet, "/api/health-metrics?userId="+uid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]models.HealthMetric](t, env)
	require.Len(t, list, 3)
	assert.Equal(t, 2000, list[0].Steps)

	rec, env = ts.do(http.MethodGet, "/api/health-metrics?userId="+uid+"&from=2024-06-11T00:00:00Z", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.HealthMetric](t, env), 2)

	rec, env = ts.do(http.MethodGet, "/api/health-metrics/latest?userId="+uid, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2000, decode[models.HealthMetric](t, env).Steps)

	rec, env = ts.do(http.MethodGet, "/api/health-metrics?userId="+uid+"&to=2024-06-11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	wholeDay := decode[[]models.HealthMetric](t, env)
	assert.NotEmpty(t, wholeDay)

	rec, env = ts.do(http.MethodGet, "/api/health-metrics?userId="+uid+"&to=%202024-06-11%20", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, wholeDay, decode[[]models.HealthMetric](t, env))

	rec, _ = ts.do(http.MethodPost, "/api/health-metrics", gin.H{"userId": user.ID, "steps": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReferenceChecksAPI(t *testing.T) {
	ts := newTestServer(t, testConfig(), store.WithReferenceChecks(store.NewMemory()))

	rec, env := ts.do(http.MethodPost, "/api/meals", gin.H{"userId": 99, "name": "toast"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 40020, env.Code)

	meals, err := ts.store.ListMeals(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, meals)
}

func TestAIEndpointsWithoutClient(t *testing.T) {
	ts := newTestServer(t, testConfig(), nil)
	user := ts.createUser("sarah")

	t.Run("meal recommendations fall back", func(t *testing.T) {
		rec, env := ts.do(http.MethodPost, "/api/ai/meal-recommendations", gin.H{
			"userId": user.ID, "dietaryRestrictions": "vegetarian",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		recs := decode[ai.MealRecommendations](t, env)
		assert.True(t, recs.Fallback)
		require.Len(t, recs.Meals, 3)
		assert.Contains(t, recs.Meals[1].Foods, "Chickpeas")
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		rec, _ := ts.do(http.MethodPost, "/api/ai/meal-recommendations", gin.H{"userId": 999})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec, _ = ts.do(http.MethodPost, "/api/ai/workout-recommendations", gin.H{"userId": 999})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("workout recommendation defaults to 30 minutes", func(t *testing.T) {
		rec, env := ts.do(http.MethodPost, "/api/ai/workout-recommendations", gin.H{"userId": user.ID})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 30, decode[ai.WorkoutRecommendation](t, env).Duration)
	})

	t.Run("chat answers the post-workout question", func(t *testing.T) {
		rec, env := ts.do(http.MethodPost, "/api/ai/chat", gin.H{
			"userId": user.ID, "message": ai.PostWorkoutPrompt,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		out := decode[map[string]any](t, env)
		assert.Contains(t, out["reply"], "post-workout meal")
	})

	t.Run("chat with a conversation appends both turns", func(t *testing.T) {
		rec, env := ts.do(http.MethodPost, "/api/ai-conversations", gin.H{"userId": user.ID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		conv := decode[models.AIConversation](t, env)

		rec, _ = ts.do(http.MethodPost, "/api/ai/chat", gin.H{
			"userId": user.ID, "message": "Any workout tips?", "conversationId": conv.ID,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec, env = ts.do(http.MethodPost, idPath("/api/ai-conversations", conv.ID, "/messages"), gin.H{
			"message": "What should I eat?",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[models.AIConversation](t, env)
		require.Len(t, updated.Messages, 4)
		assert.Equal(t, models.RoleUser, updated.Messages[0].Role)
		assert.Equal(t, "Any workout tips?", updated.Messages[0].Content)
		assert.Equal(t, models.RoleAssistant, updated.Messages[1].Role)
		assert.Equal(t, "What should I eat?", updated.Messages[2].Content)

		rec, _ = ts.do(http.MethodPost, "/api/ai-conversations/999/messages", gin.H{"message": "hi"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec, _ = ts.do(http.MethodPost, idPath("/api/ai-conversations", conv.ID, "/messages"), gin.H{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRequired = true
	ts := newTestServer(t, cfg, nil)

	rec, _ := ts.do(http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	hash, err := utils.HashPassword("password")
	require.NoError(t, err)
	require.NoError(t, store.Seed(context.Background(), ts.store, hash, time.Now()))

	rec, _ = ts.do(http.MethodPost, "/api/auth/login", gin.H{"username": "sarah", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := ts.do(http.MethodPost, "/api/auth/login", gin.H{"username": "sarah", "password": "password"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[map[string]any](t, env)
	token, _ := login["token"].(string)
	require.NotEmpty(t, token)

	ts.token = token
	rec, env = ts.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sarah", decode[models.User](t, env).Username)

	rec, _ = ts.do(http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	ts.token = "garbage"
	rec, _ = ts.do(http.MethodGet, "/api/users", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
