package prescription

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	prescriptions map[uuid.UUID]*Prescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{prescriptions: make(map[uuid.UUID]*Prescription)}
}

func (m *mockRepo) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	for i := range p.Items {
		p.Items[i].ID = uuid.New()
		p.Items[i].PrescriptionID = p.ID
	}
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Prescription) error {
	if _, ok := m.prescriptions[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.prescriptions, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Prescription, int, error) {
	var items []*Prescription
	for _, p := range m.prescriptions {
		items = append(items, p)
	}
	return items, len(items), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var items []*Prescription
	for _, p := range m.prescriptions {
		if p.PatientID == patientID {
			items = append(items, p)
		}
	}
	return items, len(items), nil
}

func validPrescription() *Prescription {
	return &Prescription{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Diagnosis: "acute pharyngitis",
		Items: []Item{
			{Medication: "Amoxicillin", Dosage: "500mg", Frequency: "tid", DurationDays: 7},
		},
	}
}

func TestService_Create(t *testing.T) {
	svc := NewService(newMockRepo())
	p := validPrescription()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Items[0].PrescriptionID != p.ID {
		t.Fatal("items must be linked to the prescription")
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name   string
		mutate func(*Prescription)
	}{
		{"missing patient", func(p *Prescription) { p.PatientID = uuid.Nil }},
		{"missing doctor", func(p *Prescription) { p.DoctorID = uuid.Nil }},
		{"missing diagnosis", func(p *Prescription) { p.Diagnosis = "" }},
		{"no items", func(p *Prescription) { p.Items = nil }},
		{"item missing medication", func(p *Prescription) { p.Items[0].Medication = "" }},
		{"item missing dosage", func(p *Prescription) { p.Items[0].Dosage = "" }},
		{"item missing frequency", func(p *Prescription) { p.Items[0].Frequency = "" }},
		{"item zero duration", func(p *Prescription) { p.Items[0].DurationDays = 0 }},
	}

	for _, tc := range cases {
		p := validPrescription()
		tc.mutate(p)
		if err := svc.Create(context.Background(), p); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestService_ListByPatient(t *testing.T) {
	svc := NewService(newMockRepo())
	p := validPrescription()
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Create(context.Background(), validPrescription()); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	items, total, err := svc.ListByPatient(context.Background(), p.PatientID, 20, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || items[0].ID != p.ID {
		t.Fatalf("unexpected result: total=%d", total)
	}
}
