/*
Package domain contains the core domain models of the onboarding assistant.

It defines the tutorial (Template, Instance and its Steps), the per-team and
per-user state tracked while users work through it, and the inbound events
that drive the state machine. This package is kept pure and free of external
dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Template: The immutable tutorial definition, loaded once at startup.
  - Instance: A user's private, mutable copy of the template.
  - UserState / TeamState: Runtime state partitioned by team and user.
  - Event: A tagged union over the inbound event kinds (join, reaction, pin, message).
  - OutboundMessage: What the host asks the platform to post or update.
*/
package domain
