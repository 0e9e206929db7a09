// Package lox — дополнения к samber/lo для функций с ошибкой.
package lox

// MapErr применяет iteratee к каждому элементу и останавливается на первой ошибке.
func MapErr[T, R any](collection []T, iteratee func(item T) (R, error)) ([]R, error) {
	var err error

	result := make([]R, len(collection))

	for i, item := range collection {
		result[i], err = iteratee(item)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}
