// Package memory — хранилище в памяти процесса для тестов и сухого прогона.
//
// Транзакции реализованы журналом отмены: каждая мутация внутри InTx
// регистрирует обратное действие, которое выполняется при ошибке.
// Вложенный InTx ведёт себя как точка сохранения.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"cs2arb/internal/domain/entity"
)

type journalKey struct{}

type journal struct {
	undo []func()
}

type Store struct {
	mu sync.RWMutex

	items       map[int64]*entity.Item
	itemsByName map[string]int64

	snapshots  []entity.PriceSnapshot
	snapshotID int64

	listings      map[int64]*entity.Listing
	listingsByExt map[string]int64
	listingID     int64

	signals  map[int64]*entity.Signal
	signalID int64

	trades  map[int64]*entity.Trade
	tradeID int64
}

func NewStore() *Store {
	return &Store{
		items:         make(map[int64]*entity.Item),
		itemsByName:   make(map[string]int64),
		listings:      make(map[int64]*entity.Listing),
		listingsByExt: make(map[string]int64),
		signals:       make(map[int64]*entity.Signal),
		trades:        make(map[int64]*entity.Trade),
	}
}

// InTx выполняет fn атомарно относительно ошибок fn.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	j := &journal{}
	parent, _ := ctx.Value(journalKey{}).(*journal)

	defer func() {
		if p := recover(); p != nil {
			s.rollback(j)
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		s.rollback(j)
		return err
	}

	if parent != nil {
		parent.undo = append(parent.undo, j.undo...)
	}
	return nil
}

func (s *Store) rollback(j *journal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

// track вызывается под s.mu.
func (s *Store) track(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.undo = append(j.undo, undo)
	}
}

func (s *Store) Items() *ItemRepository         { return &ItemRepository{s: s} }
func (s *Store) Snapshots() *SnapshotRepository { return &SnapshotRepository{s: s} }
func (s *Store) Listings() *ListingRepository   { return &ListingRepository{s: s} }
func (s *Store) Signals() *SignalRepository     { return &SignalRepository{s: s} }
func (s *Store) Trades() *TradeRepository       { return &TradeRepository{s: s} }

func cloneItem(i *entity.Item) *entity.Item {
	c := *i
	return &c
}

func cloneSnapshot(sn entity.PriceSnapshot) entity.PriceSnapshot {
	sn.TagFloors = maps.Clone(sn.TagFloors)
	return sn
}

func cloneListing(l *entity.Listing) *entity.Listing {
	c := *l
	c.Stickers = slices.Clone(l.Stickers)
	return &c
}

func cloneSignal(sig *entity.Signal) *entity.Signal {
	c := *sig
	return &c
}

func cloneTrade(t *entity.Trade) *entity.Trade {
	c := *t
	return &c
}
