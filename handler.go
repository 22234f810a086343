package minigram

import (
	"context"

	"github.com/prilive-com/minigram/obj"
	"github.com/prilive-com/minigram/tg"
)

// Handler receives bot lifecycle events and unrouted updates. Implement it
// to hold bot state; register it with WithHandler.
type Handler interface {
	// OnInit runs once after the bot identity is fetched, before polling
	// starts. Returning an error aborts Run.
	OnInit(ctx context.Context, bot *Bot) error

	// OnUpdate receives every update no command or callback route claimed.
	// Updates arrive sequentially, in ascending update id order.
	OnUpdate(ctx context.Context, bot *Bot, update tg.Update) error
}

// NopHandler ignores all events. Embed it to implement only part of
// Handler.
type NopHandler struct{}

func (NopHandler) OnInit(context.Context, *Bot) error { return nil }
func (NopHandler) OnUpdate(context.Context, *Bot, tg.Update) error { return nil }

// CommandFunc handles one bot command. msg is the message object carrying
// the command; arguments follow the command in msg text.
type CommandFunc func(ctx context.Context, bot *Bot, msg obj.Obj) error

// CallbackFunc handles one inline keyboard callback. query is the
// callback_query object; the pressed button's payload is query data. The
// query is answered automatically after the handler returns, so the
// client-side progress indicator always clears.
type CallbackFunc func(ctx context.Context, bot *Bot, query obj.Obj) error
