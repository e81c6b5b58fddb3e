// Package cli provides the docchat command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// ConversationFactory builds a conversation service for the given settings.
// Commands apply flag overrides to the settings before calling it.
type ConversationFactory func(ctx context.Context, settings domain.AppSettings) (driving.ConversationService, error)

var (
	version = "dev"

	settingsService     driving.SettingsService
	conversationFactory ConversationFactory

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with web pages, PDFs and Word documents",
	Long: `docchat answers questions about a single document at a time.

Load a web page, PDF or Word file and ask follow-up questions; every answer
is grounded in passages retrieved from the loaded document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects the services used by commands.
func SetServices(settings driving.SettingsService, factory ConversationFactory) {
	settingsService = settings
	conversationFactory = factory
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// newConversation loads settings, applies override and builds the service.
func newConversation(ctx context.Context, override func(*domain.AppSettings)) (driving.ConversationService, error) {
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	if conversationFactory == nil {
		return nil, errors.New("conversation service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if override != nil {
		override(settings)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return conversationFactory(ctx, *settings)
}
