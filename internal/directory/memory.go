package directory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/jemaat/internal/core"
)

// MemoryDirectory keeps households in process memory. It has the same
// uniqueness and not-found behavior as PostgresDirectory.
type MemoryDirectory struct {
	mu       sync.RWMutex
	families map[string]*core.Household // by id
	byNumber map[string]string          // nomor_kk -> id
	seq      int64                      // insertion order for ListHouseholds
	order    map[string]int64
	now      func() time.Time
}

var _ core.Directory = (*MemoryDirectory)(nil)

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		families: make(map[string]*core.Household),
		byNumber: make(map[string]string),
		order:    make(map[string]int64),
		now:      time.Now,
	}
}

func (d *MemoryDirectory) ExistsByHouseholdNumber(ctx context.Context, number string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.byNumber[number]
	return ok, nil
}

func (d *MemoryDirectory) CreateHousehold(ctx context.Context, h *core.Household) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byNumber[h.Number]; ok {
		return "", fmt.Errorf("insert family: %w", core.ErrAlreadyRegistered)
	}

	id := uuid.New().String()
	stored := cloneHousehold(h)
	stored.ID = id
	for i := range stored.Members {
		stored.Members[i].ID = uuid.New().String()
		stored.Members[i].HouseholdID = id
	}

	d.seq++
	d.families[id] = stored
	d.byNumber[h.Number] = id
	d.order[id] = d.seq
	return id, nil
}

func (d *MemoryDirectory) ListHouseholds(ctx context.Context) ([]core.Household, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]core.Household, 0, len(d.families))
	for _, h := range d.families {
		out = append(out, *cloneHousehold(h))
	}
	sort.Slice(out, func(i, j int) bool { return d.order[out[i].ID] < d.order[out[j].ID] })
	return out, nil
}

func (d *MemoryDirectory) GetHouseholdByNumber(ctx context.Context, number string) (*core.Household, error) {
	d.mu.RLock()
	id, ok := d.byNumber[number]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get family: %w", core.ErrNotFound)
	}
	return d.GetHousehold(ctx, id)
}

func (d *MemoryDirectory) GetHousehold(_ context.Context, id string) (*core.Household, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.families[id]
	if !ok {
		return nil, fmt.Errorf("get family: %w", core.ErrNotFound)
	}
	return cloneHousehold(h), nil
}

func (d *MemoryDirectory) UpdateHousehold(_ context.Context, id string, patch core.HouseholdPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.families[id]
	if !ok {
		return fmt.Errorf("update family: %w", core.ErrNotFound)
	}

	if patch.Number != nil && *patch.Number != h.Number {
		if _, taken := d.byNumber[*patch.Number]; taken {
			return fmt.Errorf("update family: %w", core.ErrAlreadyRegistered)
		}
		delete(d.byNumber, h.Number)
		h.Number = *patch.Number
		d.byNumber[h.Number] = id
	}
	if patch.Address != nil {
		h.Address = *patch.Address
	}
	if patch.Sector != nil {
		h.Sector = *patch.Sector
	}
	if patch.Status != nil {
		h.Status = *patch.Status
	}
	return nil
}

// UpdateVerificationStatus sets the status. Verified and Rejected record
// the actor and time; Pending clears them.
func (d *MemoryDirectory) UpdateVerificationStatus(_ context.Context, id string, status core.VerificationStatus, actorID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.families[id]
	if !ok {
		return fmt.Errorf("update status: %w", core.ErrNotFound)
	}

	h.Status = status
	if status == core.StatusPending {
		h.VerifiedAt = nil
		h.VerifiedBy = ""
		return nil
	}
	now := d.now()
	h.VerifiedAt = &now
	h.VerifiedBy = actorID
	return nil
}

func (d *MemoryDirectory) DeleteHousehold(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.families[id]
	if !ok {
		return fmt.Errorf("delete family: %w", core.ErrNotFound)
	}
	delete(d.byNumber, h.Number)
	delete(d.families, id)
	delete(d.order, id)
	return nil
}

func (d *MemoryDirectory) AddMember(_ context.Context, householdID string, m core.Member) (core.Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.families[householdID]
	if !ok {
		return core.Member{}, fmt.Errorf("insert member: %w", core.ErrNotFound)
	}
	m.ID = uuid.New().String()
	m.HouseholdID = householdID
	h.Members = append(h.Members, m)
	return m, nil
}

func (d *MemoryDirectory) GetMember(_ context.Context, id string) (core.Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if h, i := d.findMember(id); h != nil {
		return h.Members[i], nil
	}
	return core.Member{}, fmt.Errorf("get member: %w", core.ErrNotFound)
}

func (d *MemoryDirectory) UpdateMember(_ context.Context, m core.Member) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, i := d.findMember(m.ID)
	if h == nil {
		return fmt.Errorf("update member: %w", core.ErrNotFound)
	}
	m.HouseholdID = h.ID
	h.Members[i] = m
	return nil
}

func (d *MemoryDirectory) DeleteMember(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, i := d.findMember(id)
	if h == nil {
		return fmt.Errorf("delete member: %w", core.ErrNotFound)
	}
	h.Members = append(h.Members[:i], h.Members[i+1:]...)
	return nil
}

// findMember must be called with mu held.
func (d *MemoryDirectory) findMember(id string) (*core.Household, int) {
	for _, h := range d.families {
		for i := range h.Members {
			if h.Members[i].ID == id {
				return h, i
			}
		}
	}
	return nil, -1
}

func cloneHousehold(h *core.Household) *core.Household {
	cp := *h
	cp.Members = append([]core.Member(nil), h.Members...)
	if h.VerifiedAt != nil {
		t := *h.VerifiedAt
		cp.VerifiedAt = &t
	}
	return &cp
}
