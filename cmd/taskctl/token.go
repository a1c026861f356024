package main

import (
	"errors"
	"fmt"
	"time"

	"task_tracker/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with access tokens",
	}

	var (
		userID string
		ttl    time.Duration
		secret string
	)
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Mint an access token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, uid, err := issueToken(secret, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "user_id=%s\n", uid)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issue.Flags().StringVar(&userID, "user", "", "User UUID (random when empty)")
	issue.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	issue.Flags().StringVar(&secret, "secret", "", "Signing secret (default $JWT_SECRET)")
	cmd.AddCommand(issue)

	return cmd
}

func issueToken(secret, userID string, ttl time.Duration) (string, uuid.UUID, error) {
	if secret == "" {
		secret = envOr("JWT_SECRET", "")
	}
	if secret == "" {
		return "", uuid.Nil, errors.New("JWT_SECRET not set")
	}

	uid := uuid.New()
	if userID != "" {
		parsed, err := uuid.Parse(userID)
		if err != nil {
			return "", uuid.Nil, fmt.Errorf("invalid --user: %w", err)
		}
		uid = parsed
	}

	token, err := service.NewJWT(secret).Generate(uid, ttl)
	if err != nil {
		return "", uuid.Nil, err
	}
	return token, uid, nil
}
