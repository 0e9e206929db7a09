package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	Conflict            failure.ErrorCode = "Conflict"
	InvalidPaging       failure.ErrorCode = "InvalidPaging"

	// Каталог и цены
	ItemNotFound     failure.ErrorCode = "ItemNotFound"
	SnapshotNotFound failure.ErrorCode = "SnapshotNotFound"
	ListingNotFound  failure.ErrorCode = "ListingNotFound"

	// Сигналы
	SignalNotFound   failure.ErrorCode = "SignalNotFound"
	InvalidSignalID  failure.ErrorCode = "InvalidSignalID"
	InvalidDirection failure.ErrorCode = "InvalidDirection"
	InvalidROI       failure.ErrorCode = "InvalidROI"

	// Сделки
	TradeNotFound       failure.ErrorCode = "TradeNotFound"
	InvalidTradeID      failure.ErrorCode = "InvalidTradeID"
	InvalidPrice        failure.ErrorCode = "InvalidPrice"
	TradeItemUnresolved failure.ErrorCode = "TradeItemUnresolved" // Нет ни названия, ни сигнала

	// Список наблюдения
	InvalidItemName failure.ErrorCode = "InvalidItemName"
)
