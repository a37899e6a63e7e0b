// Package paytracker keeps a running net total of payments per currency and
// periodically reports it, converted into a reference currency.
//
// Payments arrive as text lines such as "EUR 100" or "usd -12.5e1". They are
// staged raw in a PendingBuffer by an Ingestor, and a ReportCycle regularly
// drains that buffer into the Aggregator, which owns the authoritative
// Traffic. Every amount is an exact decimal: no binary floating point is
// involved between the input line and the printed report.
//
// A Tracker wires one of each together. It is the foundation of the `ptrack`
// command-line tool.
package paytracker
