package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/vecino/internal/config"
	"github.com/kalambet/vecino/internal/orchestrator"
)

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat <message>",
	Short: "Send a message to the running chat service",
	Long: `Send a message to the running chat service.

Examples:
  vecino chat "¿Cuál es el horario de atención?"
  vecino chat --channel mar2 "contame un chiste"
  vecino chat --bot municipal "quiero hacer un reclamo"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message := strings.Join(args, " ")
		channel, _ := cmd.Flags().GetString("channel")
		botID, _ := cmd.Flags().GetString("bot")
		sessionID, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		req := orchestrator.ChatRequest{
			SessionID: sessionID,
			Message:   message,
			Channel:   channel,
			BotID:     botID,
		}
		resp, err := client.post(cmd.Context(), "/chat/message", req)
		if err != nil {
			return err
		}

		var chat orchestrator.ChatResponse
		if err := decodeJSON(resp, &chat); err != nil {
			return err
		}

		fmt.Printf("%s\n", chat.Reply)
		label := string(chat.Source)
		if chat.Escalated {
			label += ", escalated"
		}
		fmt.Printf("%s\n", colorize(colorCyan, fmt.Sprintf("[%s | session %s]", label, chat.SessionID)))
		return nil
	},
}

func init() {
	chatCmd.Flags().String("channel", "web", "channel the message arrives on")
	chatCmd.Flags().String("bot", "", "explicit bot identifier (default: derived from channel)")
	chatCmd.Flags().String("session", "", "session identifier (default: assigned by the server)")
}

// --- reindex ---

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Reload knowledge sources and rebuild the retrieval index",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/admin/reindex", nil)
		if err != nil {
			return err
		}

		var result struct {
			Status  string `json:"status"`
			Entries int    `json:"entries"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Reindexed %d knowledge entries", result.Entries)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
