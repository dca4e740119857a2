package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/munera/internal/models"
)

// Badge is a display label with its theme.
type Badge struct {
	Text  string `json:"text"`
	Theme string `json:"theme"`
}

const (
	themeSuccess  = "badge success"
	themeWarning  = "badge warning"
	themeError    = "badge error"
	themeContrast = "badge contrast"
)

var (
	BadgePaidToMe = Badge{"Paid to me", themeSuccess}
	BadgePaidByMe = Badge{"Paid by me", themeSuccess}
	BadgePaid     = Badge{"Paid", themeSuccess}
	BadgeOwedToMe = Badge{"Owed to me", themeWarning}
	BadgeOwedByMe = Badge{"Owed by me", themeWarning}
	BadgeNotPaid  = Badge{"Not paid", themeWarning}
	BadgeUnknown  = Badge{"Unknown status", themeError}
	BadgeCredit   = Badge{"Credit", themeSuccess}
	BadgeDebit    = Badge{"Debit", themeError}
	BadgeClear    = Badge{"Clear", themeContrast}
)

// ExpenseBadge maps a classification and paid flag to its badge.
func ExpenseBadge(t models.ExpenseType, paid bool) Badge {
	switch t {
	case models.ExpenseCredit:
		if paid {
			return BadgePaidToMe
		}
		return BadgeOwedToMe
	case models.ExpenseDebit:
		if paid {
			return BadgePaidByMe
		}
		return BadgeOwedByMe
	case models.ExpenseNone:
		if paid {
			return BadgePaid
		}
		return BadgeNotPaid
	default:
		return BadgeUnknown
	}
}

// PersonBadge labels a person by net balance: negative means the person owes
// money (Credit), positive means the person is owed money (Debit).
func PersonBadge(net decimal.Decimal) Badge {
	switch net.Sign() {
	case -1:
		return BadgeCredit
	case 1:
		return BadgeDebit
	default:
		return BadgeClear
	}
}
