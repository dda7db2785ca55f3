/*
Package onboard is an event-driven onboarding bot for team chat workspaces.

When a user joins a team, the bot sends them a direct message with a short
tutorial: react to a message, pin a message and share a message. Each step is
checked off (and the message updated in place) as the platform reports the
matching event.

# Architecture

The bot is a small pipeline of replaceable parts:

  - events.Parse turns a callback body into a domain.Envelope.
  - events.Router verifies the token, answers the url_verification
    handshake, drops redelivered events and dispatches the rest.
  - events.Handlers update per-user state through a session.Manager, which
    serializes all work for one user, then render through a messenger.
  - domain.PlatformClient performs the outbound call (see pkg/adapters/slack).

State lives in a ports.TeamStore (in-memory by default) and is not persisted
across restarts.

# Usage

	tmpl, err := tutorial.Load("welcome.json")
	if err != nil {
		log.Fatal(err)
	}

	bot, err := onboard.New(os.Getenv("VERIFICATION_TOKEN"), tmpl)
	if err != nil {
		log.Fatal(err)
	}
	_ = bot.Install(ctx, "T0001", "UBOT", slack.New(os.Getenv("BOT_TOKEN")))

	log.Fatal(http.ListenAndServe(":3000", bot.Handler()))
*/
package onboard
