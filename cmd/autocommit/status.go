package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/helixml/autocommit/application/service"
	"github.com/helixml/autocommit/infrastructure/git"
)

func statusCmd(flags *globalFlags) *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the modification counter",
		Long: `Show the modification counter. With --remote the state is read from a
running watcher's HTTP API; otherwise the configured repository root and
threshold are reported.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if remote != "" {
				return runRemoteStatus(cmd.Context(), cmd.OutOrStdout(), remote)
			}
			return runLocalStatus(cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "Base URL of a running watcher (e.g. http://127.0.0.1:8765)")

	return cmd
}

func runLocalStatus(out io.Writer, flags *globalFlags) error {
	env, err := loadEnvironment(flags)
	if err != nil {
		return err
	}

	start := flags.repo
	if start == "" {
		start = env.settings.RepoPath
	}
	if start == "" {
		start = "."
	}

	root, err := git.ResolveRepositoryRoot(start)
	if err != nil {
		return err
	}

	printStatus(out, service.Status{
		Threshold: env.settings.ModificationThreshold,
		RepoRoot:  root,
	})
	_, _ = fmt.Fprintf(out, "api key:    %s\n", presence(env.settings.WithAPIKeyOverride(env.cfg.Endpoint().APIKey()).APIKey))
	return nil
}

func runRemoteStatus(ctx context.Context, out io.Writer, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/status", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("query watcher: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("query watcher: unexpected status %s", resp.Status)
	}

	var status service.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}

	printStatus(out, status)
	_, _ = fmt.Fprintf(out, "running:    %t\n", status.Running)
	return nil
}

func printStatus(out io.Writer, s service.Status) {
	_, _ = fmt.Fprintf(out, "repository: %s\n", s.RepoRoot)
	_, _ = fmt.Fprintf(out, "changes:    %d/%d\n", s.Count, s.Threshold)
}

func presence(s string) string {
	if s == "" {
		return "missing"
	}
	return "configured"
}
