/*
Package ports defines the driven ports (interfaces) of the game.

These interfaces decouple the core from external implementations, allowing
saves and sessions to live in memory, on disk, in SQLite or in Redis.

# Key Interfaces

  - SlotStore: persists save slots.
  - DistributedLocker: provides distributed locking for concurrent session access.
*/
package ports
