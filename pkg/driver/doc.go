// Package driver talks to a reader over a Link.
//
// A Driver owns three pieces of state shared between the caller and its
// background reader loop:
//
//   - the Link, read only by the reader loop and written only by transactions;
//   - the Correlator, handing replies from the reader loop to the waiting
//     transaction in arrival order;
//   - the Dispatcher, delivering notifications to the registered handler on
//     its own goroutine so a slow handler never delays reply delivery.
//
// The protocol carries no request identifiers, so transactions are
// serialized: at most one command is outstanding at any time.
package driver
