package calculator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/munera/internal/models"
)

func cost(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func expense(id, payer, beneficiary, amount string, paid bool) *models.Expense {
	e := &models.Expense{
		ID:            id,
		Name:          id,
		CategoryID:    "food",
		PayerID:       payer,
		BeneficiaryID: beneficiary,
		Paid:          paid,
		Date:          time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
	if amount != "" {
		e.Cost = cost(amount)
	}
	return e
}

func TestBalances(t *testing.T) {
	tests := []struct {
		name       string
		expenses   []*models.Expense
		wantDebt   string
		wantCredit string
		wantNet    string
	}{
		{
			name: "mixed expenses",
			expenses: []*models.Expense{
				expense("e1", "alice", "bob", "100.00", false),
				expense("e2", "alice", "carol", "50.00", false),
				expense("e3", "bob", "alice", "40.00", false),
				expense("e4", "alice", "bob", "999.00", true),
				expense("e5", "alice", "alice", "12.00", false),
			},
			wantDebt:   "150.00",
			wantCredit: "40.00",
			wantNet:    "110.00",
		},
		{
			name:       "no expenses",
			wantDebt:   "0",
			wantCredit: "0",
			wantNet:    "0",
		},
		{
			name: "all paid",
			expenses: []*models.Expense{
				expense("e1", "alice", "bob", "100.00", true),
				expense("e2", "bob", "alice", "30.00", true),
			},
			wantDebt:   "0",
			wantCredit: "0",
			wantNet:    "0",
		},
		{
			name: "self expense only",
			expenses: []*models.Expense{
				expense("e1", "alice", "alice", "75.00", false),
			},
			wantDebt:   "0",
			wantCredit: "0",
			wantNet:    "0",
		},
		{
			name: "null cost",
			expenses: []*models.Expense{
				expense("e1", "alice", "bob", "", false),
				expense("e2", "bob", "alice", "", false),
			},
			wantDebt:   "0",
			wantCredit: "0",
			wantNet:    "0",
		},
		{
			name: "negative net",
			expenses: []*models.Expense{
				expense("e1", "bob", "alice", "25.50", false),
			},
			wantDebt:   "0",
			wantCredit: "25.50",
			wantNet:    "-25.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BalanceFor("alice", tt.expenses)
			if !b.Debt.Equal(decimal.RequireFromString(tt.wantDebt)) {
				t.Errorf("Debt = %s, want %s", b.Debt, tt.wantDebt)
			}
			if !b.Credit.Equal(decimal.RequireFromString(tt.wantCredit)) {
				t.Errorf("Credit = %s, want %s", b.Credit, tt.wantCredit)
			}
			if !b.Net.Equal(decimal.RequireFromString(tt.wantNet)) {
				t.Errorf("Net = %s, want %s", b.Net, tt.wantNet)
			}
			if !NetBalance("alice", tt.expenses).Equal(b.Net) {
				t.Errorf("NetBalance disagrees with BalanceFor")
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		payer  string
		benef  string
		viewer string
		want   models.ExpenseType
	}{
		{"viewer paid for other", "alice", "bob", "alice", models.ExpenseCredit},
		{"other paid for viewer", "bob", "alice", "alice", models.ExpenseDebit},
		{"self expense", "alice", "alice", "alice", models.ExpenseNone},
		{"viewer not involved", "bob", "carol", "alice", models.ExpenseNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := expense("e", tt.payer, tt.benef, "1", false)
			if got := Classify(e, tt.viewer); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExpenseBadge(t *testing.T) {
	tests := []struct {
		typ  models.ExpenseType
		paid bool
		want Badge
	}{
		{models.ExpenseCredit, true, BadgePaidToMe},
		{models.ExpenseCredit, false, BadgeOwedToMe},
		{models.ExpenseDebit, true, BadgePaidByMe},
		{models.ExpenseDebit, false, BadgeOwedByMe},
		{models.ExpenseNone, true, BadgePaid},
		{models.ExpenseNone, false, BadgeNotPaid},
		{"", false, BadgeUnknown},
	}

	for _, tt := range tests {
		if got := ExpenseBadge(tt.typ, tt.paid); got != tt.want {
			t.Errorf("ExpenseBadge(%q, %v) = %+v, want %+v", tt.typ, tt.paid, got, tt.want)
		}
	}
	if BadgeOwedToMe.Theme != "badge warning" || BadgeUnknown.Theme != "badge error" {
		t.Errorf("unexpected badge themes")
	}
}

func TestPersonBadge(t *testing.T) {
	tests := []struct {
		net  string
		want Badge
	}{
		{"-0.01", BadgeCredit},
		{"0", BadgeClear},
		{"0.00", BadgeClear},
		{"12", BadgeDebit},
	}
	for _, tt := range tests {
		if got := PersonBadge(decimal.RequireFromString(tt.net)); got != tt.want {
			t.Errorf("PersonBadge(%s) = %+v, want %+v", tt.net, got, tt.want)
		}
	}
}

func TestDashboardExpenses(t *testing.T) {
	self := expense("self-paid", "alice", "alice", "10", true)
	benef := expense("benef", "bob", "alice", "20", true)
	unpaidPayer := expense("unpaid-payer", "alice", "bob", "30", false)
	paidPayer := expense("paid-payer", "alice", "bob", "40", true)
	other := expense("other", "bob", "carol", "50", false)
	lastYear := expense("last-year", "alice", "alice", "60", false)
	lastYear.Date = time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)

	got := DashboardExpenses("alice", 2024, []*models.Expense{self, benef, unpaidPayer, paidPayer, other, lastYear, self})

	want := []string{"self-paid", "benef", "unpaid-payer"}
	if len(got) != len(want) {
		t.Fatalf("DashboardExpenses returned %d expenses, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("expense %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestAggregates(t *testing.T) {
	jan := expense("jan", "alice", "alice", "10.50", false)
	jan.Date = time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	dec := expense("dec", "alice", "alice", "4.50", false)
	dec.Date = time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)
	bill := expense("bill", "alice", "alice", "", false)
	bill.CategoryID = "bills"
	names := map[string]string{"food": "Food", "bills": "Bills"}

	series := MonthlyByCategory([]*models.Expense{jan, dec, bill}, names)
	if len(series) != 2 {
		t.Fatalf("MonthlyByCategory returned %d series, want 2", len(series))
	}
	if series[0].Category != "Bills" || series[1].Category != "Food" {
		t.Fatalf("unexpected series order: %s, %s", series[0].Category, series[1].Category)
	}
	food := series[1]
	if !food.Months[0].Equal(decimal.RequireFromString("10.50")) {
		t.Errorf("January = %s, want 10.50", food.Months[0])
	}
	if !food.Months[11].Equal(decimal.RequireFromString("4.50")) {
		t.Errorf("December = %s, want 4.50", food.Months[11])
	}
	if !food.Months[5].IsZero() {
		t.Errorf("June = %s, want 0", food.Months[5])
	}

	totals := TotalsByCategory([]*models.Expense{jan, dec, bill}, names)
	if len(totals) != 2 {
		t.Fatalf("TotalsByCategory returned %d totals, want 2", len(totals))
	}
	if !totals[1].Total.Equal(decimal.RequireFromString("15")) {
		t.Errorf("Food total = %s, want 15", totals[1].Total)
	}
	if !totals[0].Total.IsZero() {
		t.Errorf("Bills total = %s, want 0", totals[0].Total)
	}
}

func TestAggregatesSameNameCategories(t *testing.T) {
	mine := expense("mine", "alice", "alice", "10", false)
	mine.CategoryID = "food-alice"
	seeded := expense("seeded", "alice", "alice", "25", false)
	seeded.CategoryID = "food-admin"
	names := map[string]string{"food-alice": "Food", "food-admin": "Food"}

	series := MonthlyByCategory([]*models.Expense{mine, seeded}, names)
	if len(series) != 2 {
		t.Fatalf("MonthlyByCategory returned %d series, want 2", len(series))
	}
	if series[0].CategoryID != "food-admin" || series[1].CategoryID != "food-alice" {
		t.Errorf("series IDs = %s, %s, want food-admin, food-alice", series[0].CategoryID, series[1].CategoryID)
	}

	totals := TotalsByCategory([]*models.Expense{mine, seeded}, names)
	if len(totals) != 2 {
		t.Fatalf("TotalsByCategory returned %d totals, want 2", len(totals))
	}
	if totals[0].Category != "Food" || !totals[0].Total.Equal(decimal.NewFromInt(25)) {
		t.Errorf("food-admin total = %+v, want Food 25", totals[0])
	}
	if !totals[1].Total.Equal(decimal.NewFromInt(10)) {
		t.Errorf("food-alice total = %s, want 10", totals[1].Total)
	}
}
