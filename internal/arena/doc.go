// Package arena implements C2: a bump allocator embedded in a region,
// producing offsets relative to the region base rather than pointers, so
// the layout is valid regardless of which process maps the region. There
// is no free(): the shared-config dictionary (internal/sharedconfig) is
// the only caller, and it is expected to leak on its loser-retries-probe
// race path.
package arena
