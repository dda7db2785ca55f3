/*
Package events turns inbound platform callbacks into tutorial progress.

Parse decodes a request body into a domain.Envelope, resolving the inner event
into one of the domain.Event variants. Router verifies the envelope, answers
the url_verification handshake, drops redeliveries and hands callbacks to the
Handlers on a dispatcher, so the HTTP acknowledgement never waits on work.
*/
package events
