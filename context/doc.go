// Package context assembles the four regions, the two ring channels, and
// the shared-config dictionary into one attachable endpoint (C5's
// assembly half, ): construction by OS name or by anonymous
// descriptor exchange, settings-assembly registration, and termination.
//
// This package's Context is unrelated to the standard library's
// context.Context; callers still pass a stdlib context.Context into
// blocking operations (Write/Read/Wait) for cancellation.
package mloscontext
