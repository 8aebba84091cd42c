package catalogservice

import "errors"

var (
	// ErrProductNotFound возвращается, когда дилер не предлагает продукт
	ErrProductNotFound = errors.New("catalogservice client: product not found at dealer")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("catalogservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("catalogservice client: invalid response")

	// ErrServiceDegraded возвращается при применении graceful degradation.
	// Каталог недоступен, проверка продукта пропускается.
	ErrServiceDegraded = errors.New("catalogservice unavailable: graceful degradation applied")
)
