// Package obj provides a dynamic wrapper around decoded JSON values.
//
// Telegram API responses are deeply nested and almost every field is
// optional. Obj lets callers walk the response without nil checks:
//
//	msg := resp.Result()
//	name := msg.Field("chat").Field("first_name").Str()
//
// Accessing a missing field returns an empty Obj rather than failing.
// Empty Obj values are falsy, and field access on them yields more empty
// values, so any access chain terminates cleanly:
//
//	if o.Field("message").Field("from").Bool() {
//	    // field is present and non-empty
//	}
//
// Callers expecting a concrete type should use the typed accessors (Str,
// Int, Float, Bool) together with their own defaults.
package obj
