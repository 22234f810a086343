// Package minigram is a small client library for the Telegram Bot API.
//
// The Bot type ties together the two halves of the library: sender.Client
// issues API calls (any method, by name, with dynamic parameters) and
// receiver.PollingClient fetches updates via long polling. Incoming
// updates route to registered command and callback handlers, with a
// catch-all Handler for everything else.
//
//	bot, err := minigram.New(token,
//	    minigram.WithCommand("start", onStart),
//	    minigram.WithHandler(myHandler),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := bot.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Responses are dynamic: every API call returns a tg.Response wrapping the
// decoded JSON envelope, navigated with Field/At chains that are safe on
// missing data. A call the API rejects is not a Go error; check Ok() and
// ErrorCode() on the response. Go errors mean the call never completed.
package minigram
