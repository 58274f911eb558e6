package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cauceflow/cauce/internal/logging"
	"github.com/cauceflow/cauce/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the configured flows from the terminal",
	Long: `Runs the engine locally and reads messages from stdin, one per line.
Useful for exercising a flow directory without a WhatsApp channel in
front of it. Type /salir or press Ctrl-D to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// Keep the transcript readable; only surface real problems.
		logger := logging.New(slog.LevelWarn, "text")

		eng, err := buildEngine(cfg, logger)
		if err != nil {
			return err
		}

		tenant, _ := cmd.Flags().GetString("tenant")
		address, _ := cmd.Flags().GetString("address")
		id := domain.Identity{TenantID: tenant, Address: address}

		fmt.Println("cauce chat. Escribí un mensaje, /salir para terminar.")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			text := scanner.Text()
			if text == "/salir" {
				break
			}

			reply, err := eng.HandleMessage(cmd.Context(), id, text)
			if err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
				continue
			}
			if !reply.Handled {
				fmt.Println("(el mensaje no inició ningún flujo)")
				continue
			}
			fmt.Println(reply.Text)
		}
		return scanner.Err()
	},
}

func init() {
	chatCmd.Flags().String("tenant", "local", "Tenant id for the conversation")
	chatCmd.Flags().String("address", "terminal", "Counterpart address for the conversation")
	rootCmd.AddCommand(chatCmd)
}
