// Package bootstrap assembles the flashcard pipeline from configuration.
// Both the HTTP server and the command-line tool build their components here
// so provider selection and retry settings stay consistent.
package bootstrap
