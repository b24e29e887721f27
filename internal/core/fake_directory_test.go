package core

import (
	"context"
	"fmt"
	"sync"
)

// fakeDirectory is an in-package Directory for engine and service tests.
type fakeDirectory struct {
	mu         sync.Mutex
	households map[string]*Household // by id
	byNumber   map[string]string     // number -> id
	nextID     int

	createErr   map[string]error // forced CreateHousehold errors by number
	existsErr   error
	hideExists  map[string]bool // numbers ExistsByHouseholdNumber pretends not to see
	createOrder []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		households: make(map[string]*Household),
		byNumber:   make(map[string]string),
		createErr:  make(map[string]error),
		hideExists: make(map[string]bool),
	}
}

func (d *fakeDirectory) seed(number string, members ...Member) string {
	id, err := d.CreateHousehold(context.Background(), &Household{Number: number, Members: members})
	if err != nil {
		panic(err)
	}
	return id
}

func (d *fakeDirectory) ExistsByHouseholdNumber(_ context.Context, number string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.existsErr != nil {
		return false, d.existsErr
	}
	if d.hideExists[number] {
		return false, nil
	}
	_, ok := d.byNumber[number]
	return ok, nil
}

func (d *fakeDirectory) CreateHousehold(_ context.Context, h *Household) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.createErr[h.Number]; err != nil {
		return "", err
	}
	if _, ok := d.byNumber[h.Number]; ok {
		return "", fmt.Errorf("insert family: %w", ErrAlreadyRegistered)
	}
	d.nextID++
	id := fmt.Sprintf("h%d", d.nextID)
	cp := *h
	cp.ID = id
	cp.Members = nil
	for i, m := range h.Members {
		m.ID = fmt.Sprintf("%s-m%d", id, i+1)
		m.HouseholdID = id
		cp.Members = append(cp.Members, m)
	}
	d.households[id] = &cp
	d.byNumber[h.Number] = id
	d.createOrder = append(d.createOrder, h.Number)
	return id, nil
}

func (d *fakeDirectory) ListHouseholds(context.Context) ([]Household, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Household, 0, len(d.households))
	for _, number := range d.createOrder {
		if id, ok := d.byNumber[number]; ok {
			out = append(out, *d.households[id])
		}
	}
	return out, nil
}

func (d *fakeDirectory) GetHouseholdByNumber(ctx context.Context, number string) (*Household, error) {
	d.mu.Lock()
	id, ok := d.byNumber[number]
	d.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return d.GetHousehold(ctx, id)
}

func (d *fakeDirectory) GetHousehold(_ context.Context, id string) (*Household, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.households[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *h
	cp.Members = append([]Member(nil), h.Members...)
	return &cp, nil
}

func (d *fakeDirectory) UpdateHousehold(_ context.Context, id string, patch HouseholdPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.households[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Address != nil {
		h.Address = *patch.Address
	}
	if patch.Sector != nil {
		h.Sector = *patch.Sector
	}
	return nil
}

func (d *fakeDirectory) UpdateVerificationStatus(_ context.Context, id string, status VerificationStatus, actorID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.households[id]
	if !ok {
		return ErrNotFound
	}
	h.Status = status
	h.VerifiedBy = actorID
	return nil
}

func (d *fakeDirectory) DeleteHousehold(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.households[id]
	if !ok {
		return ErrNotFound
	}
	delete(d.byNumber, h.Number)
	delete(d.households, id)
	return nil
}

func (d *fakeDirectory) AddMember(_ context.Context, householdID string, m Member) (Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.households[householdID]
	if !ok {
		return Member{}, ErrNotFound
	}
	m.ID = fmt.Sprintf("%s-m%d", householdID, len(h.Members)+1)
	m.HouseholdID = householdID
	h.Members = append(h.Members, m)
	return m, nil
}

func (d *fakeDirectory) GetMember(_ context.Context, id string) (Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.households {
		for _, m := range h.Members {
			if m.ID == id {
				return m, nil
			}
		}
	}
	return Member{}, ErrNotFound
}

func (d *fakeDirectory) UpdateMember(_ context.Context, m Member) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.households {
		for i := range h.Members {
			if h.Members[i].ID == m.ID {
				h.Members[i] = m
				return nil
			}
		}
	}
	return ErrNotFound
}

func (d *fakeDirectory) DeleteMember(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, h := range d.households {
		for i := range h.Members {
			if h.Members[i].ID == id {
				h.Members = append(h.Members[:i], h.Members[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}
