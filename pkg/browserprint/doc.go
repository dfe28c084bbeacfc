// Package browserprint is a client for a local printer bridge service (such as
// Zebra Browser Print) that exposes label printers over HTTP.
//
// The bridge offers four endpoints relative to its base URL:
//
//   - GET available: JSON list of printers
//   - GET default: plaintext descriptor of the system default printer
//   - POST write: send raw data to a printer
//   - POST read: read what the printer sent back
//
// A Client keeps one selected printer, persisted through a Storage so the
// selection survives restarts. Every bridge call is retried (three attempts
// by default); when all attempts fail the caller gets a *RetryError carrying
// the last cause.
//
// Printer specific commands, the status code table and the label template
// live in a Profile. ZPLProfile is used unless WithProfile says otherwise.
package browserprint
