// Package region implements C1: region header layout, typed byte views,
// and the frame header codec shared by every shared-memory mapping in the
// messaging core. It has no knowledge of arenas, dictionaries, or the ring
// protocol built on top of it — those live in internal/arena,
// internal/sharedconfig, and internal/channel respectively.
package region
