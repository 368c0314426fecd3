// Package futex wraps the OS primitive that backs a cross-process
// api.Wakeup: Linux FUTEX_WAIT/FUTEX_WAKE on a word inside a shared
// mapping, or the Windows WaitOnAddress/WakeByAddressSingle equivalent.
// Both let a reader block without a named kernel object, addressed only
// by the memory location the attaching processes already share.
package futex
