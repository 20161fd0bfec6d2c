package chatbot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// handleCommand handles special commands
func (cb *ChatBot) handleCommand(ctx context.Context, cmd string, out io.Writer) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/clear":
		cb.Clear()
		return false, nil

	case "/journal":
		if cb.journal == nil {
			fmt.Fprintln(out, "The exchange journal is not enabled. Use --journal to enable it.")
			return false, nil
		}
		entries, err := cb.journal.Recent(ctx, 10)
		if err != nil {
			return false, fmt.Errorf("failed to read journal: %w", err)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out, "No exchanges recorded yet.")
			return false, nil
		}
		fmt.Fprintln(out, "\nRecent exchanges:")
		for i, e := range entries {
			fmt.Fprintf(out, "%d. %s %-8s %6dms", i+1, e.StartedAt.Format("15:04:05"), e.Outcome, e.Duration.Milliseconds())
			if e.StatusCode != 0 {
				fmt.Fprintf(out, " status=%d", e.StatusCode)
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out)
		return false, nil

	case "/help":
		fmt.Fprintln(out, "Available commands:")
		fmt.Fprintln(out, "  /quit, /exit  - Exit the chat")
		fmt.Fprintln(out, "  /clear        - Clear the conversation")
		fmt.Fprintln(out, "  /journal      - Show recent exchanges")
		fmt.Fprintln(out, "  /help         - Show this help message")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type /help)", parts[0])
	}
}

// Run reads lines from in until EOF or /quit and sends each one. Rendered
// units reach the terminal through the container, so only command output
// and prompts are written to out here.
func (cb *ChatBot) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "=== LegalChat ===")
	fmt.Fprintf(out, "Session: %s\n", cb.SessionID())
	fmt.Fprintln(out, "Type /help for commands, /quit to exit")
	fmt.Fprintln(out)

	cb.Greet()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := cb.handleCommand(ctx, input, out)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				cb.logger.Error("command error", "error", err)
			}
			if shouldQuit {
				break
			}
			continue
		}

		if err := cb.Send(ctx, input); err != nil {
			cb.logger.Warn("send rejected", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	fmt.Fprintln(out, "Goodbye!")
	return nil
}
