package services

import "github.com/shopspring/decimal"

// TransactionType представляет тип транзакции леджера
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Contribution возвращает вклад транзакции в нарастающий баланс.
// Суммы хранятся уже со знаком (расходы отрицательные, доходы
// положительные), поэтому вклад равен самой сумме для всех типов.
// Политика знака выделена отдельной функцией: если знак когда-нибудь
// начнет выводиться из типа, меняется только это место.
func Contribution(amount decimal.Decimal, txType TransactionType) decimal.Decimal {
	switch txType {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return amount
	default:
		// Неизвестный тип не меняет знак: сумма уже подписана записавшей стороной
		return amount
	}
}
