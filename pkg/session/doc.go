/*
Package session implements the team/user state service of the onboarding assistant.

The Manager owns a ports.TeamStore and serializes every read-modify-write
cycle on a user's tutorial behind a per-(team, user) lock, so concurrent
events for the same user never lose updates while events for different users
proceed in parallel. Locks are reference counted and dropped once unused.

Updates for users the store has never seen are a silent no-op: the platform
does not order deliveries across event kinds, and a reaction may arrive
before the join that creates the user.
*/
package session
