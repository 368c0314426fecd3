// File: pool/doc.go
// Package pool
// Author: momentics <momentics@gmail.com>
//
// NUMA-aware buffer pooling and batching for the messaging core: scratch
// buffers callers assemble variable-length frame payloads into before a
// channel.Write, and BufferBatch for grouping several such buffers into
// one pending-send set. Platform backends are selected by Linux/Windows
// build tags. The pools are safe for concurrent use; a BufferBatch is not.
package pool
