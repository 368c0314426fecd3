// Package channel implements C4: the bounded, lock-free ring-buffer frame
// protocol. A Channel owns a channel region (the ring itself,
// no header) plus a SyncBlock living in the global region, and drives the
// write/read/free-advance/recovery state machine over both.
package channel
