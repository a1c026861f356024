package main

import (
	"testing"
	"time"

	"task_tracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueToken(t *testing.T) {
	user := uuid.New()
	token, uid, err := issueToken("cli-secret", user.String(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, user, uid)

	parsed, err := service.NewJWT("cli-secret").Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user, parsed)
}

func TestIssueToken_Errors(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, _, err := issueToken("", "", time.Hour)
	assert.Error(t, err)

	_, _, err = issueToken("s", "not-a-uuid", time.Hour)
	assert.Error(t, err)
}

func TestWebsocketURL(t *testing.T) {
	got, err := websocketURL("https://tasks.example.com/", "abc")
	require.NoError(t, err)
	assert.Equal(t, "wss://tasks.example.com/ws?token=abc", got)

	got, err = websocketURL("http://127.0.0.1:8080", "abc")
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:8080/ws?token=abc", got)
}

func TestRootCommandTree(t *testing.T) {
	root := rootCmd()
	for _, path := range [][]string{{"migrate", "up"}, {"migrate", "down"}, {"migrate", "status"}, {"token", "issue"}, {"smoke"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
