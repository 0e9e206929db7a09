package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"cs2arb/internal/domain"
	"cs2arb/internal/domain/entity"
	"cs2arb/internal/domain/service/lifecycle"
	"cs2arb/internal/domain/value"
	"cs2arb/pkg/errcodes"
	"cs2arb/pkg/httpx/reply"
	"cs2arb/pkg/httpx/req"
	"cs2arb/pkg/rest"
)

const (
	defaultStaleAge = 24 * time.Hour
	maxSignalLimit  = 500
)

type signalService interface {
	Top(ctx context.Context, q lifecycle.TopQuery) ([]entity.Signal, error)
	Get(ctx context.Context, id int64) (*entity.Signal, error)
	MarkActedOn(ctx context.Context, id int64) error
	DeactivateStale(ctx context.Context, maxAge time.Duration) (int64, error)
	ItemOverview(ctx context.Context, name string) (lifecycle.Overview, error)
	Stats(ctx context.Context) (lifecycle.Stats, error)
}

type scannerState interface {
	IsRunning() bool
}

type watchlistSize interface {
	Len() int
}

type SignalServer struct {
	signals   signalService
	scanner   scannerState
	watchlist watchlistSize
	fx        float64
}

func NewSignalServer(signals signalService, scanner scannerState, watchlist watchlistSize, fx float64) SignalServer {
	return SignalServer{
		signals:   signals,
		scanner:   scanner,
		watchlist: watchlist,
		fx:        fx,
	}
}

func (s SignalServer) getV1Signals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	q, err := parseTopQuery(r.URL.Query())
	if err != nil {
		return err
	}

	signals, err := s.signals.Top(ctx, q)
	if err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusOK, rest.SignalList{Items: newRESTSignals(signals)})

	return nil
}

func (s SignalServer) getV1Signal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(chi.URLParam(r, "id"), errcodes.InvalidSignalID)
	if err != nil {
		return err
	}

	signal, err := s.signals.Get(ctx, id)
	if err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTSignal(*signal))

	return nil
}

func (s SignalServer) postV1SignalActedOn(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id, err := parseID(chi.URLParam(r, "id"), errcodes.InvalidSignalID)
	if err != nil {
		return err
	}

	if err := s.signals.MarkActedOn(ctx, id); err != nil {
		return err
	}

	signal, err := s.signals.Get(ctx, id)
	if err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTSignal(*signal))

	return nil
}

func (s SignalServer) postV1SignalsDeactivateStale(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var body rest.DeactivateStaleRequest
	if r.ContentLength != 0 {
		if err := req.Read(r, &body); err != nil {
			return err
		}
	}

	maxAge := defaultStaleAge
	if body.MaxAgeHours != nil {
		maxAge = time.Duration(*body.MaxAgeHours * float64(time.Hour))
	}

	n, err := s.signals.DeactivateStale(ctx, maxAge)
	if err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusOK, rest.DeactivateStaleResponse{Deactivated: n})

	return nil
}

func (s SignalServer) getV1Item(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		return domain.NewError(errcodes.InvalidItemName, "invalid item name")
	}

	overview, err := s.signals.ItemOverview(ctx, name)
	if err != nil {
		return err
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTOverview(overview, s.fx))

	return nil
}

func (s SignalServer) getV1Stats(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	stats, err := s.signals.Stats(ctx)
	if err != nil {
		return err
	}

	active := make(map[string]int64, len(stats.ActiveSignals))
	for d, n := range stats.ActiveSignals {
		active[d.String()] = n
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Stats{
		Items:          stats.Items,
		ActiveListings: stats.ActiveListings,
		ActiveSignals:  active,
		ScannerRunning: s.scanner.IsRunning(),
		WatchlistSize:  s.watchlist.Len(),
	})

	return nil
}

func parseTopQuery(values url.Values) (lifecycle.TopQuery, error) {
	q := lifecycle.DefaultTopQuery()

	if raw := values.Get("direction"); raw != "" {
		d, err := value.ParseDirection(raw)
		if err != nil {
			return q, domain.WrapError(err, errcodes.InvalidDirection, "invalid direction")
		}
		q.Direction = &d
	}

	if raw := values.Get("minRoi"); raw != "" {
		roi, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return q, domain.WrapError(err, errcodes.InvalidROI, "invalid minRoi")
		}
		q.MinROI = lo.ToPtr(roi)
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxSignalLimit {
			return q, domain.NewError(errcodes.InvalidPaging, "limit must be between 1 and 500")
		}
		q.Limit = limit
	}

	if raw := values.Get("activeOnly"); raw != "" {
		activeOnly, err := strconv.ParseBool(raw)
		if err != nil {
			return q, domain.WrapError(err, errcodes.ValidationError, "invalid activeOnly")
		}
		q.ActiveOnly = activeOnly
	}

	return q, nil
}

func parseID(raw string, code failure.ErrorCode) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewError(code, "invalid id")
	}
	return id, nil
}
