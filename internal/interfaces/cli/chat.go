package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/MemberPulse-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/client"
	"github.com/turtacn/MemberPulse-Intelligence/pkg/errors"
)

// NewChatCmd creates the chat command: send one query to the assistant and
// print the answer.
func NewChatCmd() *cobra.Command {
	var (
		conversationID string
		sessionKey     string
	)

	cmd := &cobra.Command{
		Use:   "chat <query>",
		Short: "Send one query to the membership assistant",
		Long:  "Sends a single query to the assistant and prints the answer.\nPass --conversation with the ID from a previous answer to continue\na conversation, or --session to group anonymous queries.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, args[0], conversationID, sessionKey)
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "conversation ID to continue")
	cmd.Flags().StringVar(&sessionKey, "session", "", "session key for anonymous conversations")

	return cmd
}

func runChat(cmd *cobra.Command, query, conversationID, sessionKey string) error {
	api, cliCtx, err := requireClient(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	ans, err := api.Chat(ctx, client.ChatRequest{
		Query:          query,
		ConversationID: conversationID,
		SessionKey:     sessionKey,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "chat request failed")
	}

	cliCtx.Logger.Debug("answer received",
		logging.String("intent", ans.Intent),
		logging.String("source", ans.Source),
		logging.Int64("response_time_ms", ans.ResponseTimeMS),
	)

	if cliCtx.OutputFormat == "json" {
		return PrintResult(cmd, ans)
	}

	fmt.Fprintln(cmd.OutOrStdout(), ans.Answer)
	if cliCtx.Verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "\nintent: %s  source: %s  conversation: %s  %dms\n",
			ans.Intent, ans.Source, ans.ConversationID, ans.ResponseTimeMS)
	}
	return nil
}
