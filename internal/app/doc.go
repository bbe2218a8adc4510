// Package app provides the application service layer.
//
// Validates tool requests, fetches posts and quotes through domain interfaces,
// and hands them to the analysis core. Also owns the scheduled cache warmer.
package app
