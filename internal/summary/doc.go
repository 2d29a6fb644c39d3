// Package summary defines the boundary between the processing pipeline and
// external language-model services used to condense conversation transcripts.
package summary
