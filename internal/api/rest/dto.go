package rest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/munera/internal/calculator"
	"github.com/mmynk/munera/internal/models"
	"github.com/mmynk/munera/internal/service"
)

func parseDate(field, s string) (time.Time, error) {
	t, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, badRequest("%s must be a YYYY-MM-DD date", field)
	}
	return t, nil
}

func parseOptionalDate(field, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}

// expenseRequest is the body of POST /expenses.
type expenseRequest struct {
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Cost           decimal.NullDecimal `json:"cost"`
	CategoryID     string              `json:"category_id"`
	PayerID        string              `json:"payer_id"`
	BeneficiaryID  string              `json:"beneficiary_id"`
	EventID        string              `json:"event_id"`
	Date           string              `json:"date"`
	PaymentDate    string              `json:"payment_date"`
	Periodic       bool                `json:"periodic"`
	PeriodUnit     string              `json:"period_unit"`
	PeriodInterval int                 `json:"period_interval"`
	Paid           bool                `json:"paid"`
}

func (req *expenseRequest) toModel() (*models.Expense, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	paymentDate, err := parseOptionalDate("payment_date", req.PaymentDate)
	if err != nil {
		return nil, err
	}
	return &models.Expense{
		Name:           req.Name,
		Description:    req.Description,
		Cost:           req.Cost,
		CategoryID:     req.CategoryID,
		PayerID:        req.PayerID,
		BeneficiaryID:  req.BeneficiaryID,
		EventID:        req.EventID,
		Date:           date,
		PaymentDate:    paymentDate,
		Periodic:       req.Periodic,
		PeriodUnit:     models.PeriodUnit(req.PeriodUnit),
		PeriodInterval: req.PeriodInterval,
		Paid:           req.Paid,
	}, nil
}

// expensePatch is the body of PATCH /expenses/{id}. Absent fields are left
// untouched; version is required.
type expensePatch struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Cost           *decimal.Decimal `json:"cost"`
	ClearCost      bool             `json:"clear_cost"`
	CategoryID     *string          `json:"category_id"`
	PayerID        *string          `json:"payer_id"`
	BeneficiaryID  *string          `json:"beneficiary_id"`
	EventID        *string          `json:"event_id"`
	Date           *string          `json:"date"`
	PaymentDate    *string          `json:"payment_date"`
	Periodic       *bool            `json:"periodic"`
	PeriodUnit     *string          `json:"period_unit"`
	PeriodInterval *int             `json:"period_interval"`
	Paid           *bool            `json:"paid"`
	Version        *int64           `json:"version"`
}

func (p *expensePatch) apply(e *models.Expense) error {
	if p.Version == nil {
		return badRequest("version is required")
	}
	e.Version = *p.Version
	setString(&e.Name, p.Name)
	setString(&e.Description, p.Description)
	switch {
	case p.ClearCost:
		e.Cost = decimal.NullDecimal{}
	case p.Cost != nil:
		e.Cost = decimal.NewNullDecimal(*p.Cost)
	}
	setString(&e.CategoryID, p.CategoryID)
	setString(&e.PayerID, p.PayerID)
	setString(&e.BeneficiaryID, p.BeneficiaryID)
	setString(&e.EventID, p.EventID)
	if p.Date != nil {
		d, err := parseDate("date", *p.Date)
		if err != nil {
			return err
		}
		e.Date = d
	}
	if p.PaymentDate != nil {
		d, err := parseOptionalDate("payment_date", *p.PaymentDate)
		if err != nil {
			return err
		}
		e.PaymentDate = d
	}
	if p.Periodic != nil {
		e.Periodic = *p.Periodic
	}
	if p.PeriodUnit != nil {
		e.PeriodUnit = models.PeriodUnit(*p.PeriodUnit)
	}
	if p.PeriodInterval != nil {
		e.PeriodInterval = *p.PeriodInterval
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	return nil
}

// expenseResponse is an expense labelled for the requesting viewer.
type expenseResponse struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description,omitempty"`
	Cost           decimal.NullDecimal `json:"cost"`
	CategoryID     string              `json:"category_id"`
	PayerID        string              `json:"payer_id"`
	BeneficiaryID  string              `json:"beneficiary_id"`
	EventID        string              `json:"event_id,omitempty"`
	Date           string              `json:"date"`
	PaymentDate    string              `json:"payment_date,omitempty"`
	Periodic       bool                `json:"periodic"`
	PeriodUnit     models.PeriodUnit   `json:"period_unit,omitempty"`
	PeriodInterval int                 `json:"period_interval,omitempty"`
	Paid           bool                `json:"paid"`
	Type           models.ExpenseType  `json:"type"`
	Badge          calculator.Badge    `json:"badge"`
	OwnerID        string              `json:"owner_id"`
	Version        int64               `json:"version"`
	CreatedAt      int64               `json:"created_at"`
}

func newExpenseResponse(le service.LabelledExpense) expenseResponse {
	e := le.Expense
	return expenseResponse{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		Cost:           e.Cost,
		CategoryID:     e.CategoryID,
		PayerID:        e.PayerID,
		BeneficiaryID:  e.BeneficiaryID,
		EventID:        e.EventID,
		Date:           formatDate(&e.Date),
		PaymentDate:    formatDate(e.PaymentDate),
		Periodic:       e.Periodic,
		PeriodUnit:     e.PeriodUnit,
		PeriodInterval: e.PeriodInterval,
		Paid:           e.Paid,
		Type:           le.Type,
		Badge:          le.Badge,
		OwnerID:        e.OwnerID,
		Version:        e.Version,
		CreatedAt:      e.CreatedAt,
	}
}

func newExpenseResponses(labelled []service.LabelledExpense) []expenseResponse {
	out := make([]expenseResponse, len(labelled))
	for i, le := range labelled {
		out[i] = newExpenseResponse(le)
	}
	return out
}

type categoryPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Version     *int64  `json:"version"`
}

func (p *categoryPatch) apply(c *models.Category) error {
	if p.Version == nil {
		return badRequest("version is required")
	}
	c.Version = *p.Version
	setString(&c.Name, p.Name)
	setString(&c.Description, p.Description)
	return nil
}

type personPatch struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Version   *int64  `json:"version"`
}

func (p *personPatch) apply(person *models.Person) error {
	if p.Version == nil {
		return badRequest("version is required")
	}
	person.Version = *p.Version
	setString(&person.FirstName, p.FirstName)
	setString(&person.LastName, p.LastName)
	setString(&person.Email, p.Email)
	return nil
}

type eventPatch struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	ParticipantIDs *[]string `json:"participant_ids"`
	Version        *int64    `json:"version"`
}

func (p *eventPatch) apply(e *models.Event) error {
	if p.Version == nil {
		return badRequest("version is required")
	}
	e.Version = *p.Version
	setString(&e.Name, p.Name)
	setString(&e.Description, p.Description)
	if p.ParticipantIDs != nil {
		e.ParticipantIDs = *p.ParticipantIDs
	}
	return nil
}

// userRequest is the body of POST /users. The user is created, or updated
// when the username exists.
type userRequest struct {
	Username      string              `json:"username"`
	Password      string              `json:"password"`
	FirstName     string              `json:"first_name"`
	LastName      string              `json:"last_name"`
	Email         string              `json:"email"`
	Roles         string              `json:"roles"`
	MonthlyIncome decimal.NullDecimal `json:"monthly_income"`
	Version       int64               `json:"version"`
}

func (req *userRequest) toModel() (*models.User, error) {
	roles, err := models.ParseRoles(req.Roles)
	if err != nil {
		return nil, badRequest("roles: %v", err)
	}
	return &models.User{
		Username:      req.Username,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Roles:         roles,
		MonthlyIncome: req.MonthlyIncome,
		Version:       req.Version,
	}, nil
}

// settingsPatch is the body of PATCH /settings.
type settingsPatch struct {
	FirstName     *string          `json:"first_name"`
	LastName      *string          `json:"last_name"`
	Email         *string          `json:"email"`
	Password      *string          `json:"password"`
	MonthlyIncome *decimal.Decimal `json:"monthly_income"`
	Version       *int64           `json:"version"`
}

func (p *settingsPatch) toUpdate() (service.ProfileUpdate, int64, error) {
	if p.Version == nil {
		return service.ProfileUpdate{}, 0, badRequest("version is required")
	}
	update := service.ProfileUpdate{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Password:  p.Password,
	}
	if p.MonthlyIncome != nil {
		income := decimal.NewNullDecimal(*p.MonthlyIncome)
		update.MonthlyIncome = &income
	}
	return update, *p.Version, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
