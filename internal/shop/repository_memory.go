package shop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/willtrojniak/TabApp/internal/authz"
)

// InMemoryRepository is used by tests.
type InMemoryRepository struct {
	mu         sync.Mutex
	nextID     int
	shops      map[int]*Detail
	members    map[int]map[string]*Member
	userEmails map[string]string // email -> user id
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID:     1,
		shops:      make(map[int]*Detail),
		members:    make(map[int]map[string]*Member),
		userEmails: make(map[string]string),
	}
}

// RegisterUser makes an account visible to email invites.
func (r *InMemoryRepository) RegisterUser(id, email string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userEmails[email] = id
}

func (r *InMemoryRepository) CreateShop(ctx context.Context, s *Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = r.nextID
	s.CreatedAt = time.Now()
	r.nextID++
	r.shops[s.ID] = &Detail{Shop: *s, Locations: []Location{}}
	r.members[s.ID] = make(map[string]*Member)
	return nil
}

func (r *InMemoryRepository) GetShop(ctx context.Context, id int) (*Detail, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.shops[id]
	if !ok {
		return nil, errors.New("shop not found")
	}
	out := *d
	return &out, nil
}

func (r *InMemoryRepository) ListShopsForUser(ctx context.Context, userID string) ([]Shop, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shops := []Shop{}
	for id, d := range r.shops {
		if d.OwnerID == userID {
			shops = append(shops, d.Shop)
			continue
		}
		if _, ok := r.members[id][userID]; ok {
			shops = append(shops, d.Shop)
		}
	}
	return shops, nil
}

func (r *InMemoryRepository) UpdateShop(ctx context.Context, s *Shop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.shops[s.ID]
	if !ok {
		return errors.New("shop not found")
	}
	d.Name = s.Name
	d.PaymentMethods = s.PaymentMethods
	return nil
}

func (r *InMemoryRepository) DeleteShop(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.shops, id)
	delete(r.members, id)
	return nil
}

func (r *InMemoryRepository) ListMembers(ctx context.Context, shopID int) ([]Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := []Member{}
	for _, m := range r.members[shopID] {
		members = append(members, *m)
	}
	return members, nil
}

func (r *InMemoryRepository) AddMemberByEmail(ctx context.Context, shopID int, email string, roles authz.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.userEmails[email]
	if !ok {
		return errors.New("no account with that email")
	}
	if _, ok := r.members[shopID]; !ok {
		r.members[shopID] = make(map[string]*Member)
	}
	now := time.Now()
	r.members[shopID][userID] = &Member{
		UserID:    userID,
		Email:     email,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

func (r *InMemoryRepository) UpdateMemberRoles(ctx context.Context, shopID int, userID string, roles authz.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[shopID][userID]
	if !ok {
		return errors.New("membership not found")
	}
	m.Roles = roles
	m.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) ConfirmMembership(ctx context.Context, shopID int, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.members[shopID][userID]
	if !ok {
		return errors.New("membership not found")
	}
	m.Confirmed = true
	m.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) RemoveMember(ctx context.Context, shopID int, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members[shopID], userID)
	return nil
}

func (r *InMemoryRepository) RolesFor(ctx context.Context, shopID int, userID string) (authz.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.shops[shopID]
	if !ok {
		return 0, errors.New("shop not found")
	}
	if d.OwnerID == userID {
		return authz.RoleOwner, nil
	}
	if m, ok := r.members[shopID][userID]; ok {
		return m.Roles, nil
	}
	return 0, nil
}

func (r *InMemoryRepository) CreateLocation(ctx context.Context, l *Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.shops[l.ShopID]
	if !ok {
		return errors.New("shop not found")
	}
	l.ID = r.nextID
	r.nextID++
	d.Locations = append(d.Locations, *l)
	return nil
}

func (r *InMemoryRepository) UpdateLocation(ctx context.Context, l *Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.shops[l.ShopID]
	if !ok {
		return errors.New("shop not found")
	}
	for i := range d.Locations {
		if d.Locations[i].ID == l.ID {
			d.Locations[i].Name = l.Name
			return nil
		}
	}
	return errors.New("location not found")
}

func (r *InMemoryRepository) DeleteLocation(ctx context.Context, shopID, locationID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.shops[shopID]
	if !ok {
		return errors.New("shop not found")
	}
	for i := range d.Locations {
		if d.Locations[i].ID == locationID {
			d.Locations = append(d.Locations[:i], d.Locations[i+1:]...)
			return nil
		}
	}
	return nil
}
