// Package cli provides the interactive StudyVault command-line client.
//
// It wires configuration, the HTTP API client, and the chunked uploader into
// a REPL. Typical flow: register or log in, pick a project, then upload and
// download files; large files are split into parts and sent to presigned
// URLs one by one.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
