// Package bcsp implements the core of BCSP, a bespoke client-server
// cryptographic session protocol. It provides a mutually authenticated,
// confidential, integrity-protected channel between a client and a server,
// each holding a long-term identity key on Curve25519, and multiplexes
// independent request streams over that channel with per-request keyed
// ciphers and MACs.
//
// The protocol is built entirely on one symmetric primitive: a
// cSHAKE128-based sponge, used as cipher, MAC, KDF and PRNG depending on
// which domain-separation tag keys it (see Sponge). On top of that sponge
// sits a non-standard Ed25519-shaped signature scheme, a four-flight
// handshake, a per-connection key schedule, and a framed message
// transport.
//
// bcsp only consumes its environment through narrow interfaces: wall-clock
// time, a user directory lookup, and whatever bytes a caller's network
// code hands it. It performs no I/O of its own.
package bcsp
