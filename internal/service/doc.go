// Package service contains the application-specific use cases: listing and
// searching conversations, chunking/processing them into memory chunks,
// injecting those chunks back into ChatGPT through the automation bridge,
// and exporting conversations for download.
//
// Services receive their dependencies through constructor injection and
// depend only on domain types and the interfaces defined in internal/store,
// internal/summary, and internal/task — never on concrete infrastructure.
// Expected error conditions surface as sentinel errors; unexpected failures
// are wrapped in ServiceError so the API layer can map them to safe HTTP
// responses.
package service
