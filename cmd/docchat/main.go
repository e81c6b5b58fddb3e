// Command docchat answers questions about web pages, PDFs and Word documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/docchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docchat/internal/adapters/driven/fetcher"
	"github.com/custodia-labs/docchat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docchat/internal/adapters/driving/cli"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driven"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/core/services"
	"github.com/custodia-labs/docchat/internal/logger"
	"github.com/custodia-labs/docchat/internal/normalisers"
	"github.com/custodia-labs/docchat/internal/normalisers/docx"
	"github.com/custodia-labs/docchat/internal/normalisers/pdf"
	"github.com/custodia-labs/docchat/internal/normalisers/web"
	"github.com/custodia-labs/docchat/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, domain.UserMessage(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configDir, err := file.DefaultDir()
	if err != nil {
		return err
	}
	var configStore driven.ConfigStore
	configStore, err = file.NewConfigStore(configDir)
	if err != nil {
		logger.Warn("config unavailable, settings will not be saved: %v", err)
		configStore = memory.NewConfigStore()
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	promptDir := filepath.Join(configDir, "prompts")
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return fmt.Errorf("open prompts: %w", err)
	}

	w := &wiring{ctx: ctx, prompts: prompts, promptDir: promptDir}
	defer w.Close()

	cli.SetVersion(version)
	cli.SetServices(settingsService, w.conversation)
	cli.SetSessionStore(memory.NewSessionStore[driving.Session]())

	return cli.Execute(ctx)
}

// wiring builds conversation services on demand and owns their providers.
type wiring struct {
	ctx       context.Context
	prompts   *file.PromptStore
	promptDir string

	mu        sync.Mutex
	providers []*ai.InitResult
	watchOnce sync.Once
}

// conversation implements cli.ConversationFactory.
func (w *wiring) conversation(_ context.Context, settings domain.AppSettings) (driving.ConversationService, error) {
	providers, err := ai.Init(settings)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.providers = append(w.providers, providers)
	w.mu.Unlock()

	pipeline, err := postprocessors.NewDefaultRegistry().BuildPipeline(domain.PipelineConfigFor(settings.Chunking))
	if err != nil {
		return nil, fmt.Errorf("build chunking pipeline: %w", err)
	}

	if pdf.CheckAvailable() != nil {
		logger.Debug("pdftotext not found; pdf sources will fail.\n%s", pdf.InstallInstructions())
	}
	registry := normalisers.NewRegistry(
		web.New(fetcher.New(fetcher.Config{Timeout: settings.Retrieval.ProviderTimeout})),
		pdf.New(),
		docx.New(),
	)

	svc := services.NewConversationService(
		registry,
		pipeline,
		providers.EmbeddingService,
		providers.LLMService,
		providers.VectorStores,
		settings,
	)
	svc.SetPromptStore(w.prompts)
	w.watchOnce.Do(w.watchPrompts)

	logger.Debug("conversation ready: embedding=%s/%s llm=%s/%s store=%s",
		settings.Embedding.Provider, settings.Embedding.Model,
		settings.LLM.Provider, settings.LLM.Model,
		settings.VectorStore.Backend)
	return svc, nil
}

// watchPrompts writes the default prompt files and reloads them on edit.
func (w *wiring) watchPrompts() {
	if _, err := w.prompts.Load(driven.PromptAnswerSystem); err != nil {
		logger.Warn("prompts: %v", err)
		return
	}
	watcher, err := file.NewPromptWatcher(w.prompts, w.promptDir)
	if err != nil {
		logger.Warn("prompt hot reload disabled: %v", err)
		return
	}
	go watcher.Run(w.ctx)
}

// Close releases every provider created by the factory.
func (w *wiring) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, p := range w.providers {
		p.Close()
	}
	w.providers = nil
}
