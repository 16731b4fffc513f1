// Package logfile reads the append-only document log.
//
// Each line of the log is one status marker byte followed immediately by a
// serialized record. Only lines whose marker is Exists are visible; every
// other line, blank lines included, is skipped. A visible line whose payload
// does not decode aborts the whole read with a *DecodeError naming the line.
//
// The package never writes to the log and keeps no state between reads:
// every call to a Source returns a fresh snapshot of the full content.
package logfile
