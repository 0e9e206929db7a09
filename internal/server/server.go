// Package server — HTTP API чтения сигналов и ведения журнала сделок.
package server

// Server объединяет HTTP-серверы отдельных сущностей.
type Server struct {
	SignalServer
	TradeServer
	WatchlistServer
}

func NewServer(
	signalServer SignalServer,
	tradeServer TradeServer,
	watchlistServer WatchlistServer,
) Server {
	return Server{
		SignalServer:    signalServer,
		TradeServer:     tradeServer,
		WatchlistServer: watchlistServer,
	}
}
