package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-plan/internal/config"
	"study-plan/internal/middleware"
	"study-plan/internal/model"
	"study-plan/internal/service"
	"study-plan/internal/store/memstore"
)

func init() { gin.SetMode(gin.TestMode) }

type stubGenerator struct {
	reply string
	calls int
}

func (g *stubGenerator) Generate(context.Context, string, string) (string, error) {
	g.calls++
	return g.reply, nil
}

type env struct {
	router http.Handler
	gen    *stubGenerator
}

func newEnv(t *testing.T, classifierURL string) *env {
	t.Helper()
	st := memstore.New()
	auth := service.NewAuthService(st)
	users := service.NewUserService(st, auth)
	gen := &stubGenerator{reply: `{"recommended_tasks":[],"recommended_habits":[]}`}
	r := NewRouter(Deps{
		Auth:       auth,
		Users:      users,
		Planner:    service.NewPlanner(st, gen),
		Classifier: service.NewClassifierService(config.ClassifierConfig{URL: classifierURL, Timeout: time.Second}),
		JWT:        middleware.NewJWT(config.AuthConfig{JWTSecret: "test", TokenTTL: 7 * 24 * time.Hour}),
	})
	return &env{router: r, gen: gen}
}

func (e *env) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// signup registers and logs in, returning the user id and token.
func (e *env) signup(t *testing.T, email string) (string, string) {
	t.Helper()
	w := e.do(http.MethodPost, "/users/register", "", gin.H{"name": "Ada", "email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(http.MethodPost, "/users/login", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[model.LoginResponse](t, w)
	require.NotEmpty(t, resp.Token)
	return resp.UserID, resp.Token
}

func TestHealth(t *testing.T) {
	e := newEnv(t, "")
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/health", "", nil).Code)
}

func TestRegisterLogin(t *testing.T) {
	e := newEnv(t, "")
	w := e.do(http.MethodPost, "/users/register", "", gin.H{"name": "Ada", "email": "ada@uni.edu", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")

	w = e.do(http.MethodPost, "/users/register", "", gin.H{"name": "Eve", "email": "ada@uni.edu", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/users/register", "", gin.H{"name": "Bob", "email": "not-an-email", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := e.do(http.MethodPost, "/users/login", "", gin.H{"email": "ada@uni.edu", "password": "wrong"})
	unknown := e.do(http.MethodPost, "/users/login", "", gin.H{"email": "who@uni.edu", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, bad.Body.String(), unknown.Body.String())

	ok := e.do(http.MethodPost, "/users/login", "", gin.H{"email": "ada@uni.edu", "password": "secret1"})
	require.Equal(t, http.StatusOK, ok.Code)
	resp := decode[model.LoginResponse](t, ok)
	assert.Equal(t, "Login successful", resp.Message)
	assert.NotEmpty(t, resp.UserID)
}

func TestUserRoutesRequireOwnToken(t *testing.T) {
	e := newEnv(t, "")
	id, token := e.signup(t, "ada@uni.edu")
	_, otherToken := e.signup(t, "bob@uni.edu")

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/users/"+id, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/users/"+id, otherToken, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/users/"+id, token, nil).Code)
}

func TestProfileUpdateAndPassword(t *testing.T) {
	e := newEnv(t, "")
	id, token := e.signup(t, "ada@uni.edu")
	e.signup(t, "bob@uni.edu")

	w := e.do(http.MethodPut, "/users/"+id, token, gin.H{"university": "TU Delft", "year_of_study": 2})
	require.Equal(t, http.StatusOK, w.Code)
	u := decode[model.User](t, w)
	assert.Equal(t, "TU Delft", u.University)
	require.NotNil(t, u.YearOfStudy)
	assert.Equal(t, 2, *u.YearOfStudy)

	w = e.do(http.MethodPut, "/users/"+id, token, gin.H{"email": "bob@uni.edu"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodPatch, "/users/"+id+"/password", token, gin.H{"old_password": "nope12", "new_password": "secret2"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = e.do(http.MethodPatch, "/users/"+id+"/password?old_password=secret1&new_password=secret2", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/users/login", "", gin.H{"email": "ada@uni.edu", "password": "secret2"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHabitAndTaskCRUD(t *testing.T) {
	e := newEnv(t, "")
	id, token := e.signup(t, "ada@uni.edu")
	base := "/users/" + id

	w := e.do(http.MethodPost, base+"/habits", token, gin.H{"habit_id": "h1", "title": "Run", "frequency": "daily"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(http.MethodPost, base+"/habits", token, gin.H{"habit_id": "h1", "title": "Run again", "frequency": "daily"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = e.do(http.MethodPost, base+"/habits", token, gin.H{"title": "Bad", "frequency": "hourly"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPatch, base+"/habits/h1/progress", token, gin.H{"progress": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, decode[map[string]any](t, w)["progress"])

	w = e.do(http.MethodPut, base+"/habits/h1", token, gin.H{"title": "Run 5k"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodGet, base+"/habits/h1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	h := decode[model.Habit](t, w)
	assert.Equal(t, "Run 5k", h.Title)
	assert.Equal(t, 3.0, h.Progress)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, base+"/habits/nope", token, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodDelete, base+"/habits/h1", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, base+"/habits/h1", token, nil).Code)

	w = e.do(http.MethodPost, base+"/tasks", token, gin.H{"title": "Essay"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[struct {
		Task model.Task `json:"task"`
	}](t, w)
	assert.NotEmpty(t, created.Task.TaskID)
	assert.Equal(t, model.StatusPending, created.Task.Status)

	w = e.do(http.MethodPatch, base+"/tasks/"+created.Task.TaskID+"/status", token, gin.H{"status": "ongoing"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodPatch, base+"/tasks/"+created.Task.TaskID+"/status", token, gin.H{"status": "someday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, base+"/tasks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[[]model.Task](t, w)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.StatusOngoing, tasks[0].Status)
}

func TestRecommendationsFlow(t *testing.T) {
	e := newEnv(t, "")
	id, token := e.signup(t, "ada@uni.edu")
	base := "/users/" + id

	w := e.do(http.MethodGet, base+"/recommendations", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no emotion logs found")

	require.Equal(t, http.StatusOK, e.do(http.MethodPost, base+"/emotions", token, gin.H{"emotion": "😊", "source": "emoji"}).Code)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, base+"/tasks", token, gin.H{"task_id": "t1", "title": "Essay"}).Code)
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, base+"/habits", token, gin.H{"habit_id": "h1", "title": "Journal", "frequency": "daily", "must_today": true}).Code)
	e.gen.reply = `{"recommended_tasks":[{"task_id":"t1","score":75,"reason":"Good day for writing."}],` +
		`"recommended_habits":[{"habit_id":"h1","score":60,"reason":"Marked for today."}]}`

	w = e.do(http.MethodGet, base+"/recommendations", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[model.RecommendationResponse](t, w)
	assert.Equal(t, "model", first.Source)
	require.Len(t, first.RecommendedTasks, 1)

	w = e.do(http.MethodGet, base+"/recommendations", token, nil)
	second := decode[model.RecommendationResponse](t, w)
	assert.Equal(t, "cache", second.Source)
	assert.Equal(t, first.RecommendedTasks, second.RecommendedTasks)
	assert.Equal(t, 1, e.gen.calls)

	w = e.do(http.MethodPatch, base+"/daily_recommendations/tasks/t1/status", token, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(http.MethodPatch, base+"/daily_recommendations/tasks/ghost/status", token, gin.H{"status": "completed"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for want := 1.0; want <= 2; want++ {
		w = e.do(http.MethodPatch, base+"/daily_recommendations/habits/h1/complete", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, want, decode[map[string]any](t, w)["progress"])
	}

	w = e.do(http.MethodGet, base, token, nil)
	u := decode[model.User](t, w)
	require.Len(t, u.DailyRecommendations, 1)
	assert.Equal(t, model.StatusCompleted, u.DailyRecommendations[0].RecommendedTasks[0].Status)
	assert.Equal(t, 2.0, u.DailyRecommendations[0].RecommendedHabits[0].Progress)
	assert.Equal(t, model.StatusCompleted, u.FindTask("t1").Status)
}

func TestRecommendationsMalformedModelOutput(t *testing.T) {
	e := newEnv(t, "")
	id, token := e.signup(t, "ada@uni.edu")
	require.Equal(t, http.StatusOK, e.do(http.MethodPost, "/users/"+id+"/emotions", token, gin.H{"emotion": "tired", "source": "text"}).Code)
	e.gen.reply = "I think you should rest."

	w := e.do(http.MethodGet, "/users/"+id+"/recommendations", token, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "recommendation generation failed")
}

func multipartImage(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "face.jpg")
	require.NoError(t, err)
	part.Write([]byte("jpeg"))
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestPredictAndDetect(t *testing.T) {
	classifier := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"predictions":[{"class":"sad","confidence":0.5,"bbox":[[0,0,1,1]]}]}`))
	}))
	defer classifier.Close()
	e := newEnv(t, classifier.URL)
	id, token := e.signup(t, "ada@uni.edu")

	body, ct := multipartImage(t)
	req := httptest.NewRequest(http.MethodPost, "/predict/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[model.PredictResponse](t, w)
	assert.Equal(t, []model.Prediction{{Mood: "sad", Accuracy: 50}}, resp.Predictions)

	body, ct = multipartImage(t)
	req = httptest.NewRequest(http.MethodPost, "/users/"+id+"/emotions/detect", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodGet, "/users/"+id+"/emotions", token, nil)
	logs := decode[[]model.EmotionLog](t, w)
	require.Len(t, logs, 1)
	assert.Equal(t, "sad", logs[0].Emotion)
	assert.Equal(t, model.SourceAPI, logs[0].Source)
}

func TestPredictMissingFile(t *testing.T) {
	e := newEnv(t, "")
	w := e.do(http.MethodPost, "/predict", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
