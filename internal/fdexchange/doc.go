// Package fdexchange implements C5's transport half: the Unix-domain
// socket rendezvous that carries a target process's four anonymous
// region descriptors to the agent that wants to attach to them
//, plus the wire record both sides use to describe each
// descriptor.
package fdexchange
