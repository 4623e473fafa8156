package chatcmder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"persona-chat/internal/client"
)

func newInstructionCmd(serverURL *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instruction",
		Short: "Show the server's current instruction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			got, err := client.NewAPI(*serverURL, nil).GetInstruction(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), got)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <instruction...>",
		Short: "Replace the server's instruction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("instruction must not be empty")
			}
			got, err := client.NewAPI(*serverURL, nil).SetInstruction(cmd.Context(), text)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Instruction updated: %s\n", got)
			return nil
		},
	})

	return cmd
}
