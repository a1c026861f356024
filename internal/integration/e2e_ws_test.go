package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"task_tracker/internal/domain"
	httpserver "task_tracker/internal/http"
	"task_tracker/internal/http/handlers"
	"task_tracker/internal/repository"
	"task_tracker/internal/service"
	"task_tracker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedGenerator struct {
	out string
}

func (g cannedGenerator) Generate(context.Context, string) (string, error) { return g.out, nil }
func (g cannedGenerator) Name() string { return "canned" }

func TestE2E_EnrichAndNotify(t *testing.T) {
	pool := testPool(t)
	gin.SetMode(gin.TestMode)

	taskRepo := repository.NewTaskRepository(pool)
	subtaskRepo := repository.NewSubtaskRepository(pool)
	runRepo := repository.NewEnrichmentRepository(pool)
	hub := ws.NewHub()
	gen := cannedGenerator{out: "```json\n{\"label\":\"personal\",\"subtasks\":[\"Book venue\",\"Order cake\",\"Send invites\"]}\n```"}

	jwt := service.NewJWT("e2e-secret")
	router := httpserver.NewRouter(httpserver.Deps{
		Handler: handlers.NewHandler(
			service.NewEnrichmentService(taskRepo, subtaskRepo, runRepo, gen, hub, 5*time.Second),
			service.NewTaskService(taskRepo, subtaskRepo, runRepo, hub),
		),
		Health: handlers.NewHealthHandler(pool.Ping, nil, "test"),
		JWT:    jwt,
		Hub:    hub,
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	user := uuid.New()
	token, err := jwt.Generate(user, time.Hour)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	readType(t, conn) // ready

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/functions/v1/create-task-with-ai",
		strings.NewReader(`{"title":"Plan birthday party","description":"Need venue and cake","useAI":true}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var task domain.EnrichedTask
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&task))
	require.NotNil(t, task.Label)
	assert.Equal(t, domain.LabelPersonal, *task.Label)
	require.Len(t, task.Subtasks, 3)
	assert.Equal(t, domain.OutcomeSuccess, task.Enrichment.Outcome)

	assert.Equal(t, string(domain.EventTaskCreated), readType(t, conn))
	assert.Equal(t, string(domain.EventTaskEnriched), readType(t, conn))

	stored, err := taskRepo.GetByID(context.Background(), user, task.ID)
	require.NoError(t, err)
	assert.Equal(t, *task.Label, *stored.Label)
}

func readType(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var m struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(msg, &m))
	return m.Type
}
