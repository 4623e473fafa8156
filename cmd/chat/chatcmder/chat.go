package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"persona-chat/internal/client"
	"persona-chat/internal/logger"
)

const chatLongDesc string = `Chat with a persona-chat server from the terminal.

Every line you type is sent together with the whole conversation so far.
Model replies are rendered as markdown. Type /quit to leave.

Examples:
  chat
  chat --server http://192.168.1.42:3003
  chat --instruction "You are a terse pirate."`

const chatShortDesc string = "Interactive chat against a persona-chat server"

type chatCommander struct {
	serverURL   string
	instruction string
	wordWrap    int
	debug       bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:          "chat",
		Short:        chatShortDesc,
		Long:         chatLongDesc,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&cmder.serverURL, "server", "http://localhost:3003", "Chat server base URL")
	cmd.Flags().StringVar(&cmder.instruction, "instruction", "", "Replace the server instruction before chatting")
	cmd.Flags().IntVar(&cmder.wordWrap, "wrap", 80, "Markdown word wrap width")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newInstructionCmd(&cmder.serverURL))

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.NewLogger(c.debug)
	defer log.Sync()

	api := client.NewAPI(c.serverURL, nil)
	out := cmd.OutOrStdout()

	if strings.TrimSpace(c.instruction) != "" {
		if _, err := api.SetInstruction(ctx, strings.TrimSpace(c.instruction)); err != nil {
			return fmt.Errorf("could not update instruction: %w", err)
		}
	}

	current, err := api.GetInstruction(ctx)
	if err != nil {
		return fmt.Errorf("could not reach %s: %w", c.serverURL, err)
	}
	fmt.Fprintf(out, "Persona: %s\n\n", current)

	renderer, err := client.NewTerminalRenderer(out, c.wordWrap)
	if err != nil {
		return err
	}
	conv := client.NewConversation(api, renderer)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "/quit" {
			break
		}

		_, err := conv.Submit(ctx, line)
		if err != nil && !errors.Is(err, client.ErrEmptyMessage) {
			log.Debug("chat turn failed", zap.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("could not read input: %w", err)
	}

	log.Debug("conversation finished", zap.Int("turns", len(conv.Turns())))
	return nil
}
