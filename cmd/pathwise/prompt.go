package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// prompter reads one trimmed line of input per call. It returns io.EOF when
// input ends or the user interrupts.
type prompter interface {
	Prompt(prompt string) (string, error)
	Close() error
}

// newPrompter uses readline (history, line editing) when stdin is a
// terminal and a plain line scanner otherwise.
func newPrompter(cmd *cobra.Command, historyDir string) (prompter, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		cfg := &readline.Config{
			Prompt:            "> ",
			InterruptPrompt:   "^C",
			EOFPrompt:         "exit",
			HistorySearchFold: true,
			Stdin:             readline.NewCancelableStdin(f),
			Stdout:            cmd.OutOrStdout(),
			Stderr:            cmd.ErrOrStderr(),
		}
		if historyDir != "" {
			cfg.HistoryFile = filepath.Join(historyDir, "history")
		}
		rl, err := readline.NewEx(cfg)
		if err != nil {
			return nil, fmt.Errorf("initializing readline: %w", err)
		}
		return &readlinePrompter{rl: rl}, nil
	}

	sc := bufio.NewScanner(in)
	return &scanPrompter{in: sc, out: cmd.OutOrStdout()}, nil
}

type readlinePrompter struct {
	rl *readline.Instance
}

func (p *readlinePrompter) Prompt(prompt string) (string, error) {
	p.rl.SetPrompt(prompt)
	line, err := p.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *readlinePrompter) Close() error { return p.rl.Close() }

type scanPrompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func (p *scanPrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *scanPrompter) Close() error { return nil }

// isQuit reports whether line asks to leave an interactive loop.
func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "q", "quit", "exit":
		return true
	}
	return false
}
