// Package domain contains the core business entities of the application:
// conversations pulled from a ChatGPT archive, the chunks produced from
// them, and the export artifacts derived from them. Domain types carry
// their own validation and have no dependencies on transport or storage.
package domain
