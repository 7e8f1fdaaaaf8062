package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	domaincommit "github.com/helixml/autocommit/domain/commit"
)

func historyCmd(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent commit attempts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd.Context(), cmd.OutOrStdout(), flags, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of attempts to show")

	return cmd
}

func runHistory(ctx context.Context, out io.Writer, flags *globalFlags, limit int) error {
	env, err := loadEnvironment(flags)
	if err != nil {
		return err
	}

	client, err := newClient(env, flags)
	if err != nil {
		return err
	}
	defer closeClient(client, env.logger)

	attempts, err := client.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("list attempts: %w", err)
	}
	if len(attempts) == 0 {
		_, _ = fmt.Fprintln(out, "no commit attempts recorded")
		return nil
	}

	writeHistory(out, attempts)
	return nil
}

func writeHistory(out io.Writer, attempts []domaincommit.Attempt) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TIME\tTRIGGER\tSTATUS\tSHA\tDETAIL")
	for _, a := range attempts {
		detail := a.Message().Text()
		if a.Status() != domaincommit.StatusCommitted {
			detail = string(a.ErrorKind())
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			a.CreatedAt().Local().Format("2006-01-02 15:04:05"),
			a.Trigger(),
			a.Status(),
			shortSHA(a.CommitSHA()),
			firstLine(detail),
		)
	}
	_ = tw.Flush()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
