// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CPU/NUMA pinning bookkeeping and a background task executor (used by
// cmd/mlos-demo for its channel reader loop).
// Cross-platform (Linux/Windows) via build-tagged affinity backends.
package concurrency
