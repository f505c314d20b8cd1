package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// NewTopicsCmd creates the topics command: rank what members have been
// asking about over a trailing window. Requires an admin token.
func NewTopicsCmd() *cobra.Command {
	var (
		days  int
		limit int
	)

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Show the most asked conversation topics (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopics(cmd, days, limit)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "trailing window in days (server default when 0)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum topics to return (server default when 0)")

	return cmd
}

func runTopics(cmd *cobra.Command, days, limit int) error {
	api, cliCtx, err := requireClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	result, err := api.TopTopics(ctx, days, limit)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "topics request failed")
	}

	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, result)
	}

	if len(result.Topics) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No topics in the selected window.")
		return nil
	}

	rows := make([][]string, 0, len(result.Topics))
	for _, t := range result.Topics {
		rows = append(rows, []string{
			t.Topic,
			t.Kind,
			strconv.FormatInt(t.Asks, 10),
			strconv.FormatInt(t.Askers, 10),
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Topics from %s to %s\n\n",
		result.From.Format("2006-01-02"), result.To.Format("2006-01-02"))
	fmt.Fprint(cmd.OutOrStdout(), FormatTable([]string{"TOPIC", "KIND", "ASKS", "ASKERS"}, rows))
	return nil
}
