package service

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/munera/internal/calculator"
	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/storage"
	"github.com/mmynk/munera/internal/storage/sqlstore"
)

var fixedNow = time.Date(2024, time.July, 15, 18, 30, 0, 0, time.UTC)

type testEnv struct {
	store    *sqlstore.Store
	svc      *Services
	alice    *models.User
	alicePer *models.Person
	bob      *models.Person
	food     *models.Category
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlstore.New(sqlstore.DialectSQLite, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	svc := New(store, slog.New(slog.DiscardHandler))
	svc.Expenses.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	alice := &models.User{Username: "alice", FirstName: "Alice", LastName: "Liddell"}
	if err := svc.Users.SaveUserAndConnectedPerson(ctx, alice, "wonderland"); err != nil {
		t.Fatalf("SaveUserAndConnectedPerson failed: %v", err)
	}
	alicePer, err := svc.People.LoggedInPerson(ctx, "alice")
	if err != nil {
		t.Fatalf("LoggedInPerson failed: %v", err)
	}
	bob := &models.Person{FirstName: "Bob"}
	if err := svc.People.Create(ctx, alice, bob); err != nil {
		t.Fatalf("Create person failed: %v", err)
	}
	food := &models.Category{Name: "Food"}
	if err := svc.Categories.Create(ctx, alice, food); err != nil {
		t.Fatalf("Create category failed: %v", err)
	}

	return &testEnv{store: store, svc: svc, alice: alice, alicePer: alicePer, bob: bob, food: food}
}

func (e *testEnv) newExpense(payer, beneficiary *models.Person, cost string, paid bool) *models.Expense {
	exp := &models.Expense{
		Name:          "Dinner",
		Cost:          decimal.NewNullDecimal(decimal.RequireFromString(cost)),
		CategoryID:    e.food.ID,
		PayerID:       payer.ID,
		BeneficiaryID: beneficiary.ID,
		Date:          time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Paid:          paid,
	}
	return exp
}

func TestSaveUserAndConnectedPerson(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	t.Run("new user gets person and default role", func(t *testing.T) {
		if !env.alice.Roles.Has(models.RoleUser) {
			t.Errorf("Roles = %s, want ROLE_USER", env.alice.Roles)
		}
		if env.alicePer.FirstName != "Alice" || env.alicePer.LastName != "Liddell" {
			t.Errorf("person name = %s, want Alice Liddell", env.alicePer.FullName())
		}
		if env.alicePer.OwnerID != env.alice.ID {
			t.Errorf("person owner = %s, want %s", env.alicePer.OwnerID, env.alice.ID)
		}
	})

	t.Run("update syncs names and email", func(t *testing.T) {
		update := &models.User{
			Username:  "alice",
			FirstName: "Alicia",
			LastName:  "Liddell",
			Email:     "alicia@example.com",
			Roles:     env.alice.Roles,
			Version:   env.alice.Version,
		}
		if err := env.svc.Users.SaveUserAndConnectedPerson(ctx, update, ""); err != nil {
			t.Fatalf("SaveUserAndConnectedPerson failed: %v", err)
		}
		if update.ID != env.alice.ID {
			t.Errorf("ID = %s, want %s", update.ID, env.alice.ID)
		}
		person, _ := env.svc.People.LoggedInPerson(ctx, "alice")
		if person.FirstName != "Alicia" || person.Email != "alicia@example.com" {
			t.Errorf("person = %+v, want synced Alicia", person)
		}
		stored, _ := env.store.GetUser(ctx, env.alice.ID)
		if stored.PasswordHash != env.alice.PasswordHash {
			t.Error("password hash changed without a new password")
		}
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		stale := &models.User{Username: "alice", FirstName: "Old", Version: 0}
		err := env.svc.Users.SaveUserAndConnectedPerson(ctx, stale, "")
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("error = %v, want ErrConflict", err)
		}
		person, _ := env.svc.People.LoggedInPerson(ctx, "alice")
		if person.FirstName == "Old" {
			t.Error("person updated despite conflict")
		}
	})

	t.Run("new user requires password", func(t *testing.T) {
		err := env.svc.Users.SaveUserAndConnectedPerson(ctx, &models.User{Username: "carol"}, "")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		current, _ := env.svc.Users.LoggedInUser(ctx, "alice")
		income := decimal.NewNullDecimal(decimal.RequireFromString("3000"))
		last := "Pleasance"
		user, err := env.svc.Users.UpdateProfile(ctx, "alice", current.Version, ProfileUpdate{
			LastName:      &last,
			MonthlyIncome: &income,
		})
		if err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if user.LastName != "Pleasance" || !user.MonthlyIncome.Decimal.Equal(decimal.NewFromInt(3000)) {
			t.Errorf("unexpected user after update: %+v", user)
		}
		person, _ := env.svc.People.LoggedInPerson(ctx, "alice")
		if person.LastName != "Pleasance" {
			t.Errorf("person last name = %s, want Pleasance", person.LastName)
		}
	})

	t.Run("unknown session user", func(t *testing.T) {
		if _, err := env.svc.Users.LoggedInUser(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestDeleteUser(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	dave := &models.User{Username: "dave", FirstName: "Dave"}
	if err := env.svc.Users.SaveUserAndConnectedPerson(ctx, dave, "password1"); err != nil {
		t.Fatalf("SaveUserAndConnectedPerson failed: %v", err)
	}
	davePer, _ := env.svc.People.LoggedInPerson(ctx, "dave")
	daveFood := &models.Category{Name: "Food"}
	if err := env.svc.Categories.Create(ctx, dave, daveFood); err != nil {
		t.Fatalf("Create category failed: %v", err)
	}

	exp := env.newExpense(davePer, davePer, "10", false)
	exp.CategoryID = daveFood.ID
	if err := env.svc.Expenses.Create(ctx, dave, exp); err != nil {
		t.Fatalf("Create expense failed: %v", err)
	}

	if err := env.svc.Users.Delete(ctx, dave.ID); !errors.Is(err, storage.ErrIntegrity) {
		t.Fatalf("Delete error = %v, want ErrIntegrity", err)
	}
	if _, err := env.store.GetUser(ctx, dave.ID); err != nil {
		t.Fatalf("user removed despite rollback: %v", err)
	}

	if err := env.svc.Expenses.Delete(ctx, dave, exp.ID); err != nil {
		t.Fatalf("Delete expense failed: %v", err)
	}
	if err := env.svc.Users.Delete(ctx, dave.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := env.svc.People.LoggedInPerson(ctx, "dave"); !errors.Is(err, ErrNoLinkedPerson) {
		t.Errorf("LoggedInPerson error = %v, want ErrNoLinkedPerson", err)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	exp := env.newExpense(env.alicePer, env.bob, "25.00", true)
	if err := env.svc.Expenses.Create(ctx, env.alice, exp); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if exp.OwnerID != env.alice.ID {
		t.Errorf("OwnerID = %s, want %s", exp.OwnerID, env.alice.ID)
	}
	wantDay := time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC)
	if exp.PaymentDate == nil || !exp.PaymentDate.Equal(wantDay) {
		t.Fatalf("PaymentDate = %v, want %v", exp.PaymentDate, wantDay)
	}

	stale := *exp

	exp.Paid = false
	if err := env.svc.Expenses.Update(ctx, env.alice, exp); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if exp.PaymentDate != nil {
		t.Errorf("PaymentDate = %v, want nil after unpaying", exp.PaymentDate)
	}

	stale.Name = "Lunch"
	if err := env.svc.Expenses.Update(ctx, env.alice, &stale); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("stale Update error = %v, want ErrConflict", err)
	}

	mallory := &models.User{Username: "mallory", FirstName: "Mallory"}
	if err := env.svc.Users.SaveUserAndConnectedPerson(ctx, mallory, "password1"); err != nil {
		t.Fatalf("SaveUserAndConnectedPerson failed: %v", err)
	}
	if err := env.svc.Expenses.Delete(ctx, mallory, exp.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Delete by non-owner error = %v, want ErrForbidden", err)
	}
}

func TestExpenseValidation(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(e *models.Expense)
	}{
		{"negative cost", func(e *models.Expense) { e.Cost = decimal.NewNullDecimal(decimal.NewFromInt(-5)) }},
		{"missing name", func(e *models.Expense) { e.Name = "  " }},
		{"missing category", func(e *models.Expense) { e.CategoryID = "" }},
		{"missing date", func(e *models.Expense) { e.Date = time.Time{} }},
		{"periodic without unit", func(e *models.Expense) { e.Periodic = true; e.PeriodInterval = 1 }},
		{"periodic without interval", func(e *models.Expense) { e.Periodic = true; e.PeriodUnit = "month" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := env.newExpense(env.alicePer, env.bob, "1", false)
			tt.mutate(exp)
			if err := env.svc.Expenses.Create(ctx, env.alice, exp); !errors.Is(err, ErrValidation) {
				t.Errorf("Create error = %v, want ErrValidation", err)
			}
		})
	}

	t.Run("zero cost and periodic accepted", func(t *testing.T) {
		exp := env.newExpense(env.alicePer, env.bob, "0", false)
		exp.Periodic = true
		exp.PeriodUnit = "month"
		exp.PeriodInterval = 1
		if err := env.svc.Expenses.Create(ctx, env.alice, exp); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if exp.PeriodUnit != models.PeriodMonth {
			t.Errorf("PeriodUnit = %s, want MONTH", exp.PeriodUnit)
		}
	})
}

func TestBalances(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	exp := env.newExpense(env.alicePer, env.bob, "110.00", false)
	if err := env.svc.Expenses.Create(ctx, env.alice, exp); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	check := func(personID, debt, credit, net string) {
		t.Helper()
		b, err := env.svc.People.Balance(ctx, personID)
		if err != nil {
			t.Fatalf("Balance failed: %v", err)
		}
		if !b.Debt.Equal(decimal.RequireFromString(debt)) ||
			!b.Credit.Equal(decimal.RequireFromString(credit)) ||
			!b.Net.Equal(decimal.RequireFromString(net)) {
			t.Errorf("balance = %s/%s/%s, want %s/%s/%s", b.Debt, b.Credit, b.Net, debt, credit, net)
		}
	}

	check(env.alicePer.ID, "110.00", "0", "110.00")
	check(env.bob.ID, "0", "110.00", "-110.00")

	net, err := env.svc.People.CalculateNetBalance(ctx, env.bob.ID)
	if err != nil {
		t.Fatalf("CalculateNetBalance failed: %v", err)
	}
	if !net.Equal(decimal.RequireFromString("-110")) {
		t.Errorf("CalculateNetBalance = %s, want -110", net)
	}

	exp.Paid = true
	if err := env.svc.Expenses.Update(ctx, env.alice, exp); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	check(env.alicePer.ID, "0", "0", "0")
	check(env.bob.ID, "0", "0", "0")
}

func TestClassifyAndLabel(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	owed := env.newExpense(env.alicePer, env.bob, "10", false)
	debt := env.newExpense(env.bob, env.alicePer, "5", true)
	for _, e := range []*models.Expense{owed, debt} {
		if err := env.svc.Expenses.Create(ctx, env.alice, e); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	labelled, err := env.svc.Expenses.Label(ctx, env.alice, []*models.Expense{owed, debt})
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	if labelled[0].Type != models.ExpenseCredit || labelled[0].Badge != calculator.BadgeOwedToMe {
		t.Errorf("owed = %s/%+v, want CREDIT/Owed to me", labelled[0].Type, labelled[0].Badge)
	}
	if labelled[1].Type != models.ExpenseDebit || labelled[1].Badge != calculator.BadgePaidByMe {
		t.Errorf("debt = %s/%+v, want DEBIT/Paid by me", labelled[1].Type, labelled[1].Badge)
	}

	orphan := models.NewUser("orphan", "hash", models.NewRoleSet(models.RoleUser))
	if err := env.store.CreateUser(ctx, orphan); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := env.svc.Expenses.Classify(ctx, orphan, owed); !errors.Is(err, ErrNoLinkedPerson) {
		t.Errorf("Classify error = %v, want ErrNoLinkedPerson", err)
	}
}

func TestDashboard(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	self := env.newExpense(env.alicePer, env.alicePer, "30", true)
	owedToAlice := env.newExpense(env.alicePer, env.bob, "20", false)
	settled := env.newExpense(env.alicePer, env.bob, "999", true)
	lastYear := env.newExpense(env.alicePer, env.alicePer, "7", false)
	lastYear.Date = time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)
	for _, e := range []*models.Expense{self, owedToAlice, settled, lastYear} {
		if err := env.svc.Expenses.Create(ctx, env.alice, e); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	d, err := env.svc.Expenses.Dashboard(ctx, env.alice, 2024)
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if len(d.Years) != 2 || d.Years[0] != 2024 {
		t.Errorf("Years = %v, want [2024 2023]", d.Years)
	}
	if len(d.Totals) != 1 || d.Totals[0].Category != "Food" || !d.Totals[0].Total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Totals = %+v, want Food 50", d.Totals)
	}
	if len(d.Monthly) != 1 || !d.Monthly[0].Months[2].Equal(decimal.NewFromInt(50)) {
		t.Errorf("Monthly = %+v, want March 50", d.Monthly)
	}
	if len(d.Balances) != 1 || d.Balances[0].Person.ID != env.bob.ID {
		t.Fatalf("Balances = %+v, want only Bob", d.Balances)
	}
	if d.Balances[0].Badge != calculator.BadgeCredit {
		t.Errorf("Bob badge = %+v, want Credit", d.Balances[0].Badge)
	}
}

func TestCategoryDeleteInUse(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	exp := env.newExpense(env.alicePer, env.bob, "1", false)
	if err := env.svc.Expenses.Create(ctx, env.alice, exp); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := env.svc.Categories.Delete(ctx, env.alice, env.food.ID); !errors.Is(err, storage.ErrIntegrity) || !errors.Is(err, ErrCategoryInUse) {
		t.Errorf("Delete error = %v, want ErrIntegrity and ErrCategoryInUse", err)
	}
	if err := env.svc.People.Delete(ctx, env.alice, env.bob.ID); !errors.Is(err, ErrPersonInUse) {
		t.Errorf("Delete person error = %v, want ErrPersonInUse", err)
	}
}

func TestEvents(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	event := &models.Event{Name: " Ski trip ", ParticipantIDs: []string{env.alicePer.ID, env.bob.ID}}
	if err := env.svc.Events.Create(ctx, env.alice, event); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if event.Name != "Ski trip" {
		t.Errorf("Name = %q, want trimmed", event.Name)
	}

	event.ParticipantIDs = []string{env.bob.ID}
	if err := env.svc.Events.Update(ctx, env.alice, event); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := env.svc.Events.Get(ctx, event.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.ParticipantIDs) != 1 || got.Version != 1 {
		t.Errorf("event = %+v, want one participant at version 1", got)
	}

	if err := env.svc.Events.Create(ctx, env.alice, &models.Event{}); !errors.Is(err, ErrValidation) {
		t.Errorf("Create error = %v, want ErrValidation", err)
	}
}

func TestExpenseReferences(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	mallory := &models.User{Username: "mallory", FirstName: "Mallory"}
	if err := env.svc.Users.SaveUserAndConnectedPerson(ctx, mallory, "password1"); err != nil {
		t.Fatalf("SaveUserAndConnectedPerson failed: %v", err)
	}
	malloryPer, err := env.svc.People.LoggedInPerson(ctx, "mallory")
	if err != nil {
		t.Fatalf("LoggedInPerson failed: %v", err)
	}
	malloryFood := &models.Category{Name: "Food"}
	if err := env.svc.Categories.Create(ctx, mallory, malloryFood); err != nil {
		t.Fatalf("Create category failed: %v", err)
	}
	trip := &models.Event{Name: "Trip"}
	if err := env.svc.Events.Create(ctx, env.alice, trip); err != nil {
		t.Fatalf("Create event failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(e *models.Expense)
	}{
		{"foreign payer", func(e *models.Expense) { e.PayerID = env.bob.ID }},
		{"foreign beneficiary", func(e *models.Expense) { e.BeneficiaryID = env.alicePer.ID }},
		{"foreign category", func(e *models.Expense) { e.CategoryID = env.food.ID }},
		{"foreign event", func(e *models.Expense) { e.EventID = trip.ID }},
		{"unknown person", func(e *models.Expense) { e.PayerID = "missing" }},
		{"unknown category", func(e *models.Expense) { e.CategoryID = "missing" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := env.newExpense(malloryPer, malloryPer, "500", false)
			exp.CategoryID = malloryFood.ID
			tt.mutate(exp)
			if err := env.svc.Expenses.Create(ctx, mallory, exp); !errors.Is(err, ErrValidation) {
				t.Errorf("Create error = %v, want ErrValidation", err)
			}
		})
	}

	b, err := env.svc.People.Balance(ctx, env.alicePer.ID)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if !b.Net.IsZero() {
		t.Errorf("alice net = %s, want 0", b.Net)
	}

	t.Run("owner cannot repoint to foreign person", func(t *testing.T) {
		exp := env.newExpense(env.alicePer, env.bob, "5", false)
		if err := env.svc.Expenses.Create(ctx, env.alice, exp); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		exp.BeneficiaryID = malloryPer.ID
		if err := env.svc.Expenses.Update(ctx, env.alice, exp); !errors.Is(err, ErrValidation) {
			t.Errorf("Update error = %v, want ErrValidation", err)
		}
	})

	t.Run("admin may use any record", func(t *testing.T) {
		root := &models.User{Username: "root", FirstName: "Root", Roles: models.NewRoleSet(models.RoleAdmin, models.RoleUser)}
		if err := env.svc.Users.SaveUserAndConnectedPerson(ctx, root, "password1"); err != nil {
			t.Fatalf("SaveUserAndConnectedPerson failed: %v", err)
		}
		exp := env.newExpense(env.bob, malloryPer, "5", false)
		exp.EventID = trip.ID
		if err := env.svc.Expenses.Create(ctx, root, exp); err != nil {
			t.Errorf("Create by admin failed: %v", err)
		}
	})
}

var errPersonWrite = errors.New("person write failed")

// failingPersonStore fails every person write made inside a transaction.
type failingPersonStore struct {
	storage.Store
}

func (failingPersonStore) CreatePerson(context.Context, *models.Person) error { return errPersonWrite }
func (failingPersonStore) UpdatePerson(context.Context, *models.Person) error { return errPersonWrite }

func (f failingPersonStore) InTx(ctx context.Context, fn func(storage.Store) error) error {
	return f.Store.InTx(ctx, func(tx storage.Store) error {
		return fn(failingPersonStore{tx})
	})
}

func TestSaveUserRollbackKeepsCallerState(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	users := NewUserService(failingPersonStore{env.store}, slog.New(slog.DiscardHandler))

	t.Run("create", func(t *testing.T) {
		carol := &models.User{Username: "carol", FirstName: "Carol"}
		if err := users.SaveUserAndConnectedPerson(ctx, carol, "password1"); !errors.Is(err, errPersonWrite) {
			t.Fatalf("error = %v, want errPersonWrite", err)
		}
		if carol.ID != "" || carol.PasswordHash != "" || carol.Roles != 0 {
			t.Errorf("carol = %+v, want no ID, hash or roles after rollback", carol)
		}
		if _, err := env.store.GetUserByUsername(ctx, "carol"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetUserByUsername error = %v, want ErrNotFound", err)
		}
	})

	t.Run("update", func(t *testing.T) {
		update := *env.alice
		update.LastName = "Changed"
		version := update.Version
		if err := users.SaveUserAndConnectedPerson(ctx, &update, ""); !errors.Is(err, errPersonWrite) {
			t.Fatalf("error = %v, want errPersonWrite", err)
		}
		if update.Version != version {
			t.Errorf("Version = %d, want %d after rollback", update.Version, version)
		}
		stored, err := env.store.GetUser(ctx, env.alice.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if stored.Version != version || stored.LastName != env.alice.LastName {
			t.Errorf("stored = %+v, want unchanged", stored)
		}
	})
}
