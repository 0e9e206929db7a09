package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"cs2arb/internal/domain/service/lifecycle"
	"cs2arb/internal/domain/value"
	"cs2arb/internal/transport/bot/view"
)

// OppsFilter — аргументы /opps и их же кодирует callback пагинации.
type OppsFilter struct {
	Direction *value.Direction
	MinROI    *float64
}

// ParseOppsArgs разбирает "[a|b] [minRoi]" в любом порядке.
func ParseOppsArgs(args []string) (OppsFilter, error) {
	var f OppsFilter

	for _, arg := range args {
		if d, err := value.ParseDirection(arg); err == nil && f.Direction == nil {
			f.Direction = &d
			continue
		}

		roi, err := strconv.ParseFloat(arg, 64)
		if err != nil || f.MinROI != nil {
			return OppsFilter{}, fmt.Errorf("unexpected argument %q", arg)
		}
		f.MinROI = lo.ToPtr(roi)
	}

	return f, nil
}

func (f OppsFilter) Query() lifecycle.TopQuery {
	q := lifecycle.DefaultTopQuery()
	q.Direction = f.Direction
	q.MinROI = f.MinROI
	q.Limit = oppsFetchLimit
	return q
}

// CallbackData кодирует страницу и фильтр: "opps:<page>:<dir>:<minRoi>".
func (f OppsFilter) CallbackData(page int) string {
	dir := "-"
	if f.Direction != nil {
		dir = f.Direction.Short()
	}

	roi := "-"
	if f.MinROI != nil {
		roi = strconv.FormatFloat(*f.MinROI, 'f', -1, 64)
	}

	return fmt.Sprintf("%s:%d:%s:%s", view.CallbackOppsPrefix, page, dir, roi)
}

// ParseOppsCallback — обратное CallbackData.
func ParseOppsCallback(data string) (OppsFilter, int, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 4 || parts[0] != view.CallbackOppsPrefix {
		return OppsFilter{}, 0, fmt.Errorf("malformed callback %q", data)
	}

	page, err := strconv.Atoi(parts[1])
	if err != nil {
		return OppsFilter{}, 0, fmt.Errorf("malformed page: %w", err)
	}

	var args []string
	for _, p := range parts[2:] {
		if p != "-" {
			args = append(args, p)
		}
	}

	f, err := ParseOppsArgs(args)
	if err != nil {
		return OppsFilter{}, 0, err
	}

	return f, page, nil
}

// commandArgument возвращает всё после команды: имена предметов содержат пробелы.
func commandArgument(text string) string {
	_, rest, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(rest)
}

// pageBounds ограничивает page диапазоном [1, pages] и возвращает срез [start, end).
func pageBounds(total, page int) (int, int, int, int) {
	pages := max((total+view.OppsPageSize-1)/view.OppsPageSize, 1)
	page = min(max(page, 1), pages)

	start := (page - 1) * view.OppsPageSize
	end := min(start+view.OppsPageSize, total)

	return page, pages, start, end
}
