package services

import "errors"

var (
	// ErrAccountNotFound счет не существует или принадлежит другому арендатору
	ErrAccountNotFound = errors.New("счет не найден")
	// ErrTransactionNotFound транзакция не существует или принадлежит другому арендатору
	ErrTransactionNotFound = errors.New("транзакция не найдена")
	// ErrInvalidRange конец диапазона раньше начала или дата не разобрана
	ErrInvalidRange = errors.New("некорректный диапазон дат")
	// ErrConcurrentModification счет изменен параллельной операцией; вызывающая
	// сторона может перечитать баланс и повторить один раз
	ErrConcurrentModification = errors.New("счет изменен параллельной операцией")
)
