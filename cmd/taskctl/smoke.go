package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"task_tracker/internal/domain"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func smokeCmd() *cobra.Command {
	var (
		baseURL     string
		title       string
		description string
		useAI       bool
		secret      string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Create an enriched task against a running server and watch its events",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, uid, err := issueToken(secret, "", time.Hour)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user %s\n", uid)
			return runSmoke(ctx, out, baseURL, token, title, description, useAI)
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://127.0.0.1:"+envOr("APP_PORT", "8080"), "Server base URL")
	cmd.Flags().StringVar(&title, "title", "Plan birthday party", "Task title")
	cmd.Flags().StringVar(&description, "description", "Need venue and cake", "Task description")
	cmd.Flags().BoolVar(&useAI, "ai", true, "Request enrichment")
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (default $JWT_SECRET)")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Overall deadline")
	return cmd
}

func runSmoke(ctx context.Context, out io.Writer, baseURL, token, title, description string, useAI bool) error {
	wsURL, err := websocketURL(baseURL, token)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial ws: %w", err)
	}
	defer conn.Close()

	body, _ := json.Marshal(map[string]any{"title": title, "description": description, "useAI": useAI})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimSuffix(baseURL, "/")+"/api/v1/tasks/enrich", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("create task: status %d: %s", resp.StatusCode, raw)
	}

	var task domain.EnrichedTask
	if err := json.Unmarshal(raw, &task); err != nil {
		return fmt.Errorf("decode task: %w", err)
	}
	fmt.Fprintf(out, "task %s label=%q subtasks=%d outcome=%s\n", task.ID, task.LabelOrEmpty(), len(task.Subtasks), task.Enrichment.Outcome)
	for _, st := range task.Subtasks {
		fmt.Fprintf(out, "  - %s\n", st.Title)
	}

	want := domain.EventTaskCreated
	if useAI {
		want = domain.EventTaskEnriched
	}
	deadline, _ := ctx.Deadline()
	for {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("waiting for %s event: %w", want, err)
		}
		var ev struct {
			Type   domain.EventType `json:"type"`
			TaskID string           `json:"task_id"`
		}
		if err := json.Unmarshal(msg, &ev); err != nil {
			continue
		}
		fmt.Fprintf(out, "event %s\n", ev.Type)
		if ev.Type == want && ev.TaskID == task.ID.String() {
			fmt.Fprintln(out, "smoke test finished")
			return nil
		}
	}
}

func websocketURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid --url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}
