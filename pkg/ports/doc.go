/*
Package ports defines the driven ports (interfaces) of the onboarding assistant.

These interfaces decouple the core logic from external implementations, allowing
the event handlers to work with various storage backends and delivery guards.

# Key Interfaces

  - TeamStore: Responsible for holding team metadata and per-user tutorial state.
  - Deduplicator: Recognizes events the platform delivered more than once.

The platform client itself (domain.PlatformClient) lives in the domain package
because every TeamState carries one.
*/
package ports
