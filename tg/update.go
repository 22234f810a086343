package tg

import "github.com/prilive-com/minigram/obj"

// Update is one inbound event from getUpdates. It carries the numeric
// update_id used to advance the server-side offset cursor; everything
// else is accessed dynamically.
type Update struct {
	obj.Obj
}

// WrapUpdate wraps a decoded update value.
func WrapUpdate(o obj.Obj) Update { return Update{Obj: o} }

// UpdateID returns the update's incrementing numeric id.
func (u Update) UpdateID() int64 { return u.Field("update_id").Int() }

// Message returns the update's message payload, if any.
func (u Update) Message() obj.Obj { return u.Field("message") }

// CallbackQuery returns the update's callback_query payload, if any.
func (u Update) CallbackQuery() obj.Obj { return u.Field("callback_query") }
