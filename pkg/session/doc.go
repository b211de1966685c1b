/*
Package session keeps live games keyed by session id for multi-player
surfaces such as the HTTP and MCP servers.

Every operation on one session runs under that session's lock, so two
requests never drive the same game at once. The lock table is reference
counted and entries vanish when the last holder leaves. With a
DistributedLocker configured the same critical section also holds a lock
shared across replicas.
*/
package session
