package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"cs2arb/internal/transport/bot/middleware"
	"cs2arb/internal/transport/bot/view"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminID int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminID))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))
	adminGroup.HandleMessage(h.OnOpps, th.CommandEqual("opps"))
	adminGroup.HandleMessage(h.OnItem, th.CommandEqual("item"))
	adminGroup.HandleMessage(h.OnTrades, th.CommandEqual("trades"))
	adminGroup.HandleMessage(h.OnProfit, th.CommandEqual("profit"))
	adminGroup.HandleMessage(h.OnStartScan, th.CommandEqual("startscan"))
	adminGroup.HandleMessage(h.OnStopScan, th.CommandEqual("stopscan"))
	adminGroup.HandleMessage(h.OnWatch, th.CommandEqual("watch"))
	adminGroup.HandleMessage(h.OnWatchAdd, th.CommandEqual("watchadd"))
	adminGroup.HandleMessage(h.OnWatchRemove, th.CommandEqual("watchremove"))

	cbGroup := bh.Group(th.AnyCallbackQuery())
	cbGroup.Use(middleware.AdminOnly(adminID))

	cbGroup.HandleCallbackQuery(h.OnOppsCallback, th.CallbackDataPrefix(view.CallbackOppsPrefix+":"))
	cbGroup.HandleCallbackQuery(h.OnNoopCallback, th.CallbackDataEqual(callbackNoop))
}
