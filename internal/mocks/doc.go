// Package mocks holds hand-written test doubles for the pipeline's
// capabilities: MockCompleter stands in for a language-model provider and
// MockFileGenerator for the per-file pipeline.
//
// Each mock exposes function fields for full control and scripted fields
// (Responses, Cards, Err) for the common cases, and records every call so
// tests can assert on what was sent:
//
//	completer := mocks.NewMockCompleterWithResponses(
//	    `[{"question": "What is ATP?", "answer": "The cell's energy carrier"}]`,
//	    `[]`,
//	)
//	// ... run the generator ...
//	require.Equal(t, 2, completer.CallCount())
//	system := completer.Requests()[0].Messages[0].Content
package mocks
