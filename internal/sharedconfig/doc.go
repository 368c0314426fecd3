// Package sharedconfig implements C3: the open-addressing dictionary that
// maps (codegen_type_id, user_key) to the arena offset of a config record,
// resolvable identically by any process mapping the shared-config region.
package sharedconfig
