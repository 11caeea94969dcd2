package command

import (
	"github.com/rsms/gored/internal/resp"
)

func subscribeHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	channel := string(args[0])
	sub := ctx.PubSub.Subscribe(channel, ctx.Session)
	ctx.Session.AddSubscription(channel, sub)
	w.ArrayHeader(3)
	w.BulkStringS("subscribe")
	w.BulkStringS(channel)
	w.Integer(int64(ctx.Session.SubscriptionCount()))
	return false
}

func unsubscribeHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	channel := string(args[0])
	ctx.Session.RemoveSubscription(channel)
	w.ArrayHeader(3)
	w.BulkStringS("unsubscribe")
	w.BulkStringS(channel)
	w.Integer(int64(ctx.Session.SubscriptionCount()))
	return false
}

func publishHandler(ctx *Context, w *resp.Writer, args [][]byte) bool {
	n := ctx.PubSub.Publish(string(args[0]), args[1])
	w.Integer(int64(n))
	return false
}
