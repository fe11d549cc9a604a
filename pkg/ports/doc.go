/*
Package ports defines the driven ports (interfaces) for the tiller engine.

These interfaces decouple the orchestration core from external
implementations, allowing the engine to work with any step collaborator
(LLM-backed or scripted), storage backend, or locking mechanism.

# Key Interfaces

  - Step: one reasoning stage; the orchestrator only knows this contract.
  - StateStore: persists session snapshots across suspend/resume.
  - DistributedLocker: coordinates session access across replicas.
*/
package ports
