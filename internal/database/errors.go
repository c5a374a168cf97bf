package database

import "errors"

var (
	// ErrNotFound означает что записи с таким id нет
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidStatus означает попытку установить неизвестный статус
	ErrInvalidStatus = errors.New("invalid booking status")
)
