package billing

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	invoices map[uuid.UUID]*Invoice
}

func newMockRepo() *mockRepo {
	return &mockRepo{invoices: make(map[uuid.UUID]*Invoice)}
}

func (m *mockRepo) Create(_ context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	copied := *inv
	m.invoices[inv.ID] = &copied
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	copied := *inv
	return &copied, nil
}

func (m *mockRepo) Update(_ context.Context, inv *Invoice) error {
	if _, ok := m.invoices[inv.ID]; !ok {
		return fmt.Errorf("not found")
	}
	copied := *inv
	m.invoices[inv.ID] = &copied
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.invoices, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Invoice, int, error) {
	var items []*Invoice
	for _, inv := range m.invoices {
		items = append(items, inv)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	var items []*Invoice
	for _, inv := range m.invoices {
		if inv.PatientID == patientID {
			items = append(items, inv)
		}
	}
	return items, len(items), nil
}

func draftInvoice(t *testing.T, svc *Service) *Invoice {
	t.Helper()
	inv := &Invoice{
		PatientID: uuid.New(),
		Items: []LineItem{
			{Description: "Consultation", Quantity: 1, UnitPriceCents: 50000},
			{Description: "Blood panel", Quantity: 2, UnitPriceCents: 30000},
		},
		DiscountPercent: 10,
		TaxPercent:      18,
	}
	if err := svc.Create(context.Background(), inv); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return inv
}

func TestComputeTotals(t *testing.T) {
	inv := &Invoice{
		Items: []LineItem{
			{Quantity: 1, UnitPriceCents: 50000},
			{Quantity: 2, UnitPriceCents: 30000},
		},
		DiscountPercent: 10,
		TaxPercent:      18,
	}
	inv.ComputeTotals()

	if inv.SubtotalCents != 110000 {
		t.Fatalf("expected subtotal 110000, got %d", inv.SubtotalCents)
	}
	if inv.DiscountCents != 11000 {
		t.Fatalf("expected discount 11000, got %d", inv.DiscountCents)
	}
	if inv.TaxCents != 17820 {
		t.Fatalf("expected tax 17820, got %d", inv.TaxCents)
	}
	if inv.TotalCents != 116820 {
		t.Fatalf("expected total 116820, got %d", inv.TotalCents)
	}
}

func TestService_CreateIgnoresCallerTotals(t *testing.T) {
	svc := NewService(newMockRepo())
	inv := &Invoice{
		PatientID:     uuid.New(),
		Items:         []LineItem{{Description: "Consultation", Quantity: 1, UnitPriceCents: 50000}},
		SubtotalCents: 1, DiscountCents: 2, TaxCents: 3, TotalCents: 4,
	}
	if err := svc.Create(context.Background(), inv); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if inv.SubtotalCents != 50000 || inv.TotalCents != 50000 {
		t.Fatalf("caller-supplied totals must be recomputed: %+v", inv)
	}
	if inv.Status != StatusDraft {
		t.Fatalf("expected draft, got %s", inv.Status)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	base := func() *Invoice {
		return &Invoice{
			PatientID: uuid.New(),
			Items:     []LineItem{{Description: "X", Quantity: 1, UnitPriceCents: 100}},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Invoice)
	}{
		{"missing patient", func(i *Invoice) { i.PatientID = uuid.Nil }},
		{"no items", func(i *Invoice) { i.Items = nil }},
		{"empty description", func(i *Invoice) { i.Items[0].Description = "" }},
		{"zero quantity", func(i *Invoice) { i.Items[0].Quantity = 0 }},
		{"negative price", func(i *Invoice) { i.Items[0].UnitPriceCents = -1 }},
		{"discount over 100", func(i *Invoice) { i.DiscountPercent = 101 }},
		{"negative tax", func(i *Invoice) { i.TaxPercent = -1 }},
	}
	for _, tc := range cases {
		inv := base()
		tc.mutate(inv)
		if err := svc.Create(context.Background(), inv); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestService_Lifecycle(t *testing.T) {
	svc := NewService(newMockRepo())
	inv := draftInvoice(t, svc)

	issued, err := svc.Issue(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if issued.Status != StatusIssued {
		t.Fatalf("expected issued, got %s", issued.Status)
	}

	paid, err := svc.MarkPaid(context.Background(), inv.ID)
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if paid.Status != StatusPaid || paid.PaidAt == nil {
		t.Fatalf("expected paid with timestamp, got %+v", paid)
	}
}

func TestService_InvalidTransitions(t *testing.T) {
	svc := NewService(newMockRepo())
	inv := draftInvoice(t, svc)

	if _, err := svc.MarkPaid(context.Background(), inv.ID); err == nil {
		t.Fatal("paying a draft must fail")
	}

	if _, err := svc.Issue(context.Background(), inv.ID); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := svc.Issue(context.Background(), inv.ID); err == nil {
		t.Fatal("issuing twice must fail")
	}
}

func TestService_PaidInvoiceImmutable(t *testing.T) {
	svc := NewService(newMockRepo())
	inv := draftInvoice(t, svc)
	if _, err := svc.Issue(context.Background(), inv.ID); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := svc.MarkPaid(context.Background(), inv.ID); err != nil {
		t.Fatalf("pay failed: %v", err)
	}

	inv.Items[0].UnitPriceCents = 1
	if err := svc.Update(context.Background(), inv); err == nil {
		t.Fatal("updating a paid invoice must fail")
	}
	if _, err := svc.Void(context.Background(), inv.ID); err == nil {
		t.Fatal("voiding a paid invoice must fail")
	}
}

func TestService_DeleteOnlyDrafts(t *testing.T) {
	svc := NewService(newMockRepo())
	inv := draftInvoice(t, svc)
	if _, err := svc.Issue(context.Background(), inv.ID); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if err := svc.Delete(context.Background(), inv.ID); err == nil {
		t.Fatal("deleting an issued invoice must fail")
	}

	draft := draftInvoice(t, svc)
	if err := svc.Delete(context.Background(), draft.ID); err != nil {
		t.Fatalf("deleting a draft failed: %v", err)
	}
}

func TestService_UpdateRecomputesTotals(t *testing.T) {
	svc := NewService(newMockRepo())
	inv := draftInvoice(t, svc)

	inv.Items = []LineItem{{Description: "Consultation", Quantity: 1, UnitPriceCents: 20000}}
	inv.DiscountPercent = 0
	inv.TaxPercent = 0
	if err := svc.Update(context.Background(), inv); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := svc.Get(context.Background(), inv.ID)
	if got.TotalCents != 20000 {
		t.Fatalf("expected recomputed total 20000, got %d", got.TotalCents)
	}
}
