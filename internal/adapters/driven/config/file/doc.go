// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the docchat config directory (~/.docchat).
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (config.toml)
//   - PromptStore: user-editable prompt templates (prompts/*.txt)
//   - PromptWatcher: reloads the PromptStore when prompt files change
package file
