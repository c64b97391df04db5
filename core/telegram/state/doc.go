// Package state keeps per-admin reply sessions in memory for the lifetime of the process.
package state
