package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

var (
	askSource sourceFlags
	askTopK   int
	askOutput string
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Answer one question about a document",
	Long: `Load a document, answer a single question from it and exit.

Examples:
  docchat ask --url https://go.dev/doc/effective_go "How are errors returned?"
  docchat ask --pdf report.pdf --top-k 6 --output json "What was the revenue?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askSource.register(askCmd)
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (default from settings)")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(askCmd)
}

// askPassage is one retrieved passage in structured output.
type askPassage struct {
	Score   float64 `json:"score" yaml:"score"`
	Content string  `json:"content" yaml:"content"`
}

// askResult is the structured output of the ask command.
type askResult struct {
	Source   string       `json:"source" yaml:"source"`
	Question string       `json:"question" yaml:"question"`
	Query    string       `json:"query" yaml:"query"`
	Answer   string       `json:"answer" yaml:"answer"`
	Context  []askPassage `json:"context" yaml:"context"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	switch askOutput {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: unknown output format %q", domain.ErrInvalidInput, askOutput)
	}
	if askTopK < 0 {
		return fmt.Errorf("%w: --top-k must be positive", domain.ErrInvalidInput)
	}

	src, ok, err := askSource.source()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("one of --url, --pdf or --word is required")
	}

	svc, err := newConversation(cmd.Context(), func(s *domain.AppSettings) {
		if askTopK > 0 {
			s.Retrieval.TopK = askTopK
		}
	})
	if err != nil {
		return err
	}

	session := svc.NewSession()
	defer svc.CloseSession(session) //nolint:errcheck // index is in memory

	if err := svc.SelectSource(cmd.Context(), session, src); err != nil {
		return err
	}
	ex, err := svc.Ask(cmd.Context(), session, src.Kind, strings.Join(args, " "))
	if err != nil {
		return err
	}

	result := askResult{
		Source:   session.Snapshot().Source,
		Question: ex.Question,
		Query:    ex.Query,
		Answer:   ex.Answer,
		Context:  make([]askPassage, len(ex.Context.Chunks)),
	}
	for i, c := range ex.Context.Chunks {
		result.Context[i] = askPassage{Score: c.Score, Content: c.Chunk.Content}
	}
	return writeAskResult(cmd.OutOrStdout(), askOutput, result)
}

func writeAskResult(w io.Writer, format string, result askResult) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, result.Answer)
		return err
	}
}
