package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/normalisers"
)

var chatSource sourceFlags

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a line-based conversation about a document",
	Long: `Start a conversation in the terminal. Each line is a question about the
loaded document; answers take earlier turns into account.

Commands:
  /source <web|pdf|word> <url-or-path>  load a different document
  /history                              show the conversation so far
  /reset                                forget the conversation, keep the document
  /help                                 show this list
  /quit                                 exit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatSource.register(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

const chatHelp = `/source <web|pdf|word> <url-or-path>, /history, /reset, /help, /quit`

// chatREPL holds the state of one chat command.
type chatREPL struct {
	svc     driving.ConversationService
	session driving.Session
	kind    domain.SourceKind
	out     io.Writer
	errOut  io.Writer
}

func runChat(cmd *cobra.Command, _ []string) error {
	src, hasSource, err := chatSource.source()
	if err != nil {
		return err
	}

	svc, err := newConversation(cmd.Context(), nil)
	if err != nil {
		return err
	}

	r := &chatREPL{
		svc:     svc,
		session: svc.NewSession(),
		kind:    domain.SourceKindWeb,
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}
	defer svc.CloseSession(r.session) //nolint:errcheck // index is in memory

	if hasSource {
		if err := r.load(cmd.Context(), src); err != nil {
			return err
		}
	}

	fmt.Fprintf(r.out, "Bot: %s\n", domain.SeedGreeting)
	if !hasSource {
		fmt.Fprintln(r.out, "Load a document with /source <web|pdf|word> <url-or-path>.")
	}

	return r.loop(cmd.Context(), cmd.InOrStdin())
}

func (r *chatREPL) loop(ctx context.Context, in io.Reader) error {
	prompt := isTerminal(in)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if prompt {
			fmt.Fprint(r.out, "You: ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := r.command(ctx, line); quit {
				return nil
			}
			continue
		}

		ex, err := r.svc.Ask(ctx, r.session, r.kind, line)
		if err != nil {
			fmt.Fprintln(r.errOut, domain.UserMessage(err))
			continue
		}
		fmt.Fprintf(r.out, "Bot: %s\n", ex.Answer)
	}
}

// command runs a slash command and reports whether the REPL should exit.
func (r *chatREPL) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Fprintln(r.out, chatHelp)

	case "/history":
		for _, t := range r.session.History(r.kind) {
			fmt.Fprintf(r.out, "%s: %s\n", speaker(t.Role), t.Content)
		}

	case "/reset":
		if err := r.svc.ResetHistory(r.session, r.kind); err != nil {
			fmt.Fprintln(r.errOut, domain.UserMessage(err))
			return false
		}
		fmt.Fprintf(r.out, "Bot: %s\n", domain.SeedGreeting)

	case "/source":
		if len(fields) < 3 {
			fmt.Fprintln(r.errOut, "usage: /source <web|pdf|word> <url-or-path>")
			return false
		}
		kind, err := domain.ParseSourceKind(fields[1])
		if err != nil {
			fmt.Fprintln(r.errOut, domain.UserMessage(err))
			return false
		}
		target := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[len(fields[0]):]), fields[1]))
		src, err := normalisers.OpenSource(kind, target)
		if err != nil {
			fmt.Fprintln(r.errOut, domain.UserMessage(err))
			return false
		}
		if err := r.load(ctx, src); err != nil {
			fmt.Fprintln(r.errOut, domain.UserMessage(err))
		}

	default:
		fmt.Fprintf(r.errOut, "unknown command %s; try %s\n", fields[0], chatHelp)
	}
	return false
}

func (r *chatREPL) load(ctx context.Context, src domain.Source) error {
	fmt.Fprintf(r.out, "Loading %s...\n", src.Name)
	if err := r.svc.SelectSource(ctx, r.session, src); err != nil {
		return err
	}
	r.kind = src.Kind
	snap := r.session.Snapshot()
	fmt.Fprintf(r.out, "Loaded %s (%d chunks).\n", snap.Source, snap.Chunks)
	return nil
}

func speaker(role domain.Role) string {
	if role == domain.RoleHuman {
		return "You"
	}
	return "Bot"
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
