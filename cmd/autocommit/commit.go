package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	domaincommit "github.com/helixml/autocommit/domain/commit"
)

func commitCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Commit pending changes now",
		Long: `Stage and commit all pending changes now, regardless of the
modification count, with a generated commit message.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommit(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
}

func runCommit(ctx context.Context, out io.Writer, flags *globalFlags) error {
	env, err := loadEnvironment(flags)
	if err != nil {
		return err
	}

	client, err := newClient(env, flags)
	if err != nil {
		return err
	}
	defer closeClient(client, env.logger)

	attempt, err := client.CommitNow(ctx)
	if errors.Is(err, domaincommit.ErrNothingToCommit) {
		_, _ = fmt.Fprintln(out, "nothing to commit")
		return nil
	}
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	_, _ = fmt.Fprintf(out, "[%s] %s\n", shortSHA(attempt.CommitSHA()), attempt.Message().Text())
	_, _ = fmt.Fprintf(out, " %d file(s) changed, %d insertion(s)(+), %d deletion(s)(-)\n",
		len(attempt.Files()), attempt.Additions(), attempt.Deletions())
	return nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	if sha == "" {
		return "-------"
	}
	return sha
}
