package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// NewSuggestCmd creates the suggest command: print the quick-reply prompts
// the server offers for the caller's role.
func NewSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Print suggested queries for your role",
		Args:  cobra.NoArgs,
		RunE:  runSuggest,
	}
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	api, cliCtx, err := requireClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	suggestions, err := api.Suggestions(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "suggestions request failed")
	}

	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, map[string][]string{"suggestions": suggestions})
	}

	for _, s := range suggestions {
		fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", s)
	}
	return nil
}
