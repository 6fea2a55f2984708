package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/pathwise/internal/career"
	"github.com/kalambet/pathwise/internal/chat"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with the career advisor",
		Long: `Ask the career advisor a question. With a message argument a single
question is sent; without one an interactive session starts. In the
session, enter a number to send one of the suggested questions.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			wf := chat.New(a.remote, a.stats, a.logger)
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				sendChat(cmd, wf, args[0])
				return nil
			}

			p, err := newPrompter(cmd, a.cfg.Storage.DataDir)
			if err != nil {
				return err
			}
			defer p.Close()

			printHeading(out, "Career advisor")
			fmt.Fprintln(out, "Quick questions:")
			for i, q := range chat.QuickQuestions {
				fmt.Fprintf(out, "  %d. %s\n", i+1, q)
			}
			fmt.Fprintln(out, faint("Type q to leave."))

			for {
				line, err := p.Prompt("you> ")
				if errors.Is(err, io.EOF) || isQuit(line) {
					return nil
				}
				if err != nil {
					return err
				}
				sendChat(cmd, wf, quickQuestion(line))
			}
		},
	}
}

// quickQuestion expands a quick-question number to its text.
func quickQuestion(line string) string {
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(chat.QuickQuestions) {
		return chat.QuickQuestions[n-1]
	}
	return line
}

func sendChat(cmd *cobra.Command, wf *chat.Workflow, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	reply, err := wf.Send(cmd.Context(), text)
	renderChatMessage(cmd.OutOrStdout(), reply)
	if err != nil {
		printError("No result: %v", err)
	}
}

func renderChatMessage(w io.Writer, m career.ChatMessage) {
	fmt.Fprintf(w, "%s %s\n", cyan("advisor>"), m.Text)
}
