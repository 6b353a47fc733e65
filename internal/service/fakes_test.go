package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/joshwa2003/hr-helpdesk/internal/domain"
	"github.com/joshwa2003/hr-helpdesk/internal/events"
	"github.com/joshwa2003/hr-helpdesk/internal/repository"
)

// memTicketRepo is an in-memory TicketRepository for service tests.
type memTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	seq     int
	clock   func() time.Time
}

func newMemTicketRepo(clock func() time.Time) *memTicketRepo {
	return &memTicketRepo{tickets: map[string]domain.Ticket{}, clock: clock}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.Version = 1
	now := r.clock()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	ticket.Version++
	ticket.UpdatedAt = r.clock()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

func (r *memTicketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.tickets {
		if stored.TicketNumber == number {
			copied := stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if filter.CreatedBy != nil && stored.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.Unassigned != nil && *filter.Unassigned && stored.AssignedTo != nil {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, stored.Status) {
			continue
		}
		if len(filter.Categories) > 0 && !containsCategory(filter.Categories, stored.Category) {
			continue
		}
		result = append(result, stored)
	}
	return result, nil
}

func (r *memTicketRepo) CountOpenByAssignee(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, stored := range r.tickets {
		if stored.AssignedTo == nil || *stored.AssignedTo != userID {
			continue
		}
		switch stored.Status {
		case domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusPending:
			count++
		}
	}
	return count, nil
}

func (r *memTicketRepo) ListForSweep(_ context.Context, _ int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if stored.Status == domain.TicketStatusClosed || stored.Status == domain.TicketStatusResolved {
			continue
		}
		result = append(result, stored)
	}
	return result, nil
}

func (r *memTicketRepo) MaxTicketNumber(_ context.Context, prefix string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := ""
	for _, stored := range r.tickets {
		if strings.HasPrefix(stored.TicketNumber, prefix) && stored.TicketNumber > max {
			max = stored.TicketNumber
		}
	}
	return max, nil
}

func containsStatus(set []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

func containsCategory(set []domain.TicketCategory, category domain.TicketCategory) bool {
	for _, c := range set {
		if c == category {
			return true
		}
	}
	return false
}

// memUserRepo is an in-memory UserRepository. Users list in insertion order,
// which stands in for the created_at ordering of the real repository.
type memUserRepo struct {
	mu    sync.Mutex
	order []string
	users map[string]domain.User
	seq   int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.seq)
	}
	user.CreatedAt = time.Now()
	r.order = append(r.order, user.ID)
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := stored
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.users {
		if stored.Email == email {
			copied := stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListByRoles(_ context.Context, roles []domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roleSet := map[domain.Role]struct{}{}
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}
	var result []domain.User
	for _, id := range r.order {
		stored := r.users[id]
		if !stored.Active {
			continue
		}
		if _, ok := roleSet[stored.Role]; ok {
			result = append(result, stored)
		}
	}
	return result, nil
}

// memEscalationRepo records the escalation trail.
type memEscalationRepo struct {
	mu      sync.Mutex
	entries []domain.EscalationEntry
	seq     int
}

func (r *memEscalationRepo) Create(_ context.Context, entry *domain.EscalationEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = fmt.Sprintf("esc-%d", r.seq)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memEscalationRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.EscalationEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.EscalationEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// memHistoryRepo records audit entries.
type memHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
	seq     int
}

func (r *memHistoryRepo) Create(_ context.Context, history *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	history.ID = fmt.Sprintf("hist-%d", r.seq)
	history.CreatedAt = time.Now()
	r.entries = append(r.entries, *history)
	return nil
}

func (r *memHistoryRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) typesSeen() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	types := make([]events.EventType, 0, len(d.events))
	for _, event := range d.events {
		types = append(types, event.Type)
	}
	return types
}

// testEnv wires the service stack over the in-memory repositories with a
// controllable clock.
type testEnv struct {
	clock       *testClock
	tickets     *memTicketRepo
	users       *memUserRepo
	escalations *memEscalationRepo
	history     *memHistoryRepo
	dispatcher  *recordingDispatcher
	ticketSvc   *TicketService
	escalateSvc *EscalationService
	assignSvc   *AssignmentService
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(at time.Time) *testClock {
	return &testClock{now: at}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestEnv(at time.Time) *testEnv {
	clock := newTestClock(at)
	tickets := newMemTicketRepo(clock.Now)
	users := newMemUserRepo()
	escalations := &memEscalationRepo{}
	history := &memHistoryRepo{}
	dispatcher := &recordingDispatcher{}

	assignSvc := NewAssignmentService(AssignmentDependencies{
		TicketRepo:  tickets,
		UserRepo:    users,
		HistoryRepo: history,
		Dispatcher:  dispatcher,
	})
	sequencer := NewTicketSequencer(nil, tickets, zap.NewNop())
	sequencer.now = clock.Now
	ticketSvc := NewTicketService(TicketDependencies{
		TicketRepo:     tickets,
		UserRepo:       users,
		EscalationRepo: escalations,
		HistoryRepo:    history,
		Selector:       assignSvc,
		Sequencer:      sequencer,
		Dispatcher:     dispatcher,
	})
	ticketSvc.now = clock.Now
	escalateSvc := NewEscalationService(EscalationDependencies{
		TicketRepo:     tickets,
		UserRepo:       users,
		EscalationRepo: escalations,
		HistoryRepo:    history,
		Dispatcher:     dispatcher,
	})
	escalateSvc.now = clock.Now

	return &testEnv{
		clock:       clock,
		tickets:     tickets,
		users:       users,
		escalations: escalations,
		history:     history,
		dispatcher:  dispatcher,
		ticketSvc:   ticketSvc,
		escalateSvc: escalateSvc,
		assignSvc:   assignSvc,
	}
}

func (e *testEnv) addUser(id string, role domain.Role) *domain.User {
	user := &domain.User{
		ID:     id,
		Name:   id,
		Email:  id + "@example.com",
		Role:   role,
		Active: true,
	}
	_ = e.users.Create(context.Background(), user)
	return user
}

func (e *testEnv) addInactiveUser(id string, role domain.Role) *domain.User {
	user := &domain.User{
		ID:    id,
		Name:  id,
		Email: id + "@example.com",
		Role:  role,
	}
	_ = e.users.Create(context.Background(), user)
	return user
}
