// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Normaliser / NormaliserRegistry: Turns a web, pdf or word source into a Document
//   - Fetcher: Retrieves web pages for the web normaliser
//   - PostProcessor / PostProcessorPipeline: Splits documents into chunks
//   - EmbeddingService: The embedding provider used to build and query indexes
//   - LLMService: The completion provider used for reformulation and answers
//   - VectorStore / VectorStoreFactory: Holds (id, text, vector) entries for one index
//   - ConfigStore / PromptStore: Application configuration and prompt templates
//
// # Optional Interfaces
//
//   - SessionStore: Keeps sessions for long-running front ends (MCP, TUI)
//   - AIConfigValidator: Pings providers when settings change
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
