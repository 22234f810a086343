// Package sender issues authenticated Bot API calls.
//
// The primitive is generic: any method name is forwarded verbatim as the
// request path segment, so new API methods need no client changes:
//
//	resp, err := client.Invoke(ctx, "sendMessage", tg.Params{
//	    "chat_id": 10885151,
//	    "text":    "Hi Lonami!",
//	})
//
// err covers only the transport/local tier (DNS, connect, TLS, unreadable
// file, malformed response). The remote method rejecting the call is NOT
// an error: it comes back as a Response with Ok() == false and
// ErrorCode()/Description() set. Callers branch on Ok().
//
// Requests carry a JSON body, or multipart/form-data when any parameter
// is an InputFile. Typed convenience wrappers (SendMessage, SendDocument,
// ...) are a thin layer over Invoke.
package sender
