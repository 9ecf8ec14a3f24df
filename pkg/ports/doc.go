/*
Package ports defines the driven ports (interfaces) of the wizard engine.

These interfaces decouple journey handling from storage and coordination
backends.

# Key Interfaces

  - SessionStore: persists sessions (field values plus the journey log).
  - DistributedLocker: serializes concurrent access to one session across replicas.

RunSessionStoreContract is a reusable suite every SessionStore adapter runs.
*/
package ports
