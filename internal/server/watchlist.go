package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"cs2arb/internal/domain"
	"cs2arb/pkg/errcodes"
	"cs2arb/pkg/httpx/reply"
	"cs2arb/pkg/httpx/req"
	"cs2arb/pkg/rest"
)

type watchlistStore interface {
	Add(name string) bool
	Remove(name string) bool
	List() []string
	Save(ctx context.Context) error
}

type WatchlistServer struct {
	watchlist watchlistStore
}

func NewWatchlistServer(watchlist watchlistStore) WatchlistServer {
	return WatchlistServer{watchlist: watchlist}
}

func (s WatchlistServer) getV1Watchlist(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, rest.Watchlist{Items: s.watchlist.List()})

	return nil
}

// postV1Watchlist отвечает 201 для нового имени и 200, если оно уже было.
func (s WatchlistServer) postV1Watchlist(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var body rest.WatchlistAddRequest
	if err := req.Read(r, &body); err != nil {
		return err
	}

	name := strings.TrimSpace(body.Name)
	if name == "" {
		return domain.NewError(errcodes.InvalidItemName, "item name is empty")
	}

	status := http.StatusOK
	if s.watchlist.Add(name) {
		if err := s.watchlist.Save(ctx); err != nil {
			return err
		}
		status = http.StatusCreated
	}

	reply.JSON(ctx, w, status, rest.Watchlist{Items: s.watchlist.List()})

	return nil
}

func (s WatchlistServer) deleteV1Watchlist(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || strings.TrimSpace(name) == "" {
		return domain.NewError(errcodes.InvalidItemName, "invalid item name")
	}

	if !s.watchlist.Remove(name) {
		return domain.NewError(errcodes.NotFound, "item is not in watchlist")
	}

	if err := s.watchlist.Save(ctx); err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Watchlist{Items: s.watchlist.List()})

	return nil
}
