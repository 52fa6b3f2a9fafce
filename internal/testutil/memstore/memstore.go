// Package memstore is an in-memory implementation of every repository
// interface, used by service, policy and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	convEntity "github.com/vadim/campus-market/internal/domain/conversation/entity"
	itemEntity "github.com/vadim/campus-market/internal/domain/item/entity"
	orderEntity "github.com/vadim/campus-market/internal/domain/order/entity"
	reportEntity "github.com/vadim/campus-market/internal/domain/report/entity"
	userEntity "github.com/vadim/campus-market/internal/domain/user/entity"
)

// Store holds all collections. Rows are kept in insertion order.
type Store struct {
	mu sync.Mutex

	users   []*userEntity.User
	items   []*itemEntity.Item
	convs   []*convEntity.Conversation
	msgs    []*convEntity.Message
	orders  []*orderEntity.Order
	reports []*reportEntity.Report

	failure error
}

// New creates an empty store
func New() *Store {
	return &Store{}
}

// FailNext makes the next repository call return err
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

// takeFailure returns and clears a pending injected failure; callers hold mu
func (s *Store) takeFailure() error {
	err := s.failure
	s.failure = nil
	return err
}

func newID() string {
	return uuid.New().String()
}

// AddUser seeds a user, assigning an ID when empty
func (s *Store) AddUser(u userEntity.User) userEntity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = newID()
	}
	s.users = append(s.users, &u)
	return u
}

// AddItem seeds an item, assigning an ID when empty
func (s *Store) AddItem(it itemEntity.Item) itemEntity.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it.ID == "" {
		it.ID = newID()
	}
	if it.Image == nil {
		it.Image = []string{}
	}
	s.items = append(s.items, &it)
	return it
}

// User returns a stored user by ID
func (s *Store) User(id string) (userEntity.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u := s.findUser(id); u != nil {
		return *u, true
	}
	return userEntity.User{}, false
}

// Item returns a stored item by ID
func (s *Store) Item(id string) (itemEntity.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it := s.findItem(id); it != nil {
		return *it, true
	}
	return itemEntity.Item{}, false
}

// Order returns a stored order by ID
func (s *Store) Order(id string) (orderEntity.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			return *o, true
		}
	}
	return orderEntity.Order{}, false
}

// Conversation returns a stored conversation by ID
func (s *Store) Conversation(id string) (convEntity.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.findConv(id); c != nil {
		return copyConv(c), true
	}
	return convEntity.Conversation{}, false
}

// Counts reports the number of stored rows per collection
type Counts struct {
	Users, Items, Conversations, Messages, Orders, Reports int
}

// Count returns the current collection sizes
func (s *Store) Count() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Users:         len(s.users),
		Items:         len(s.items),
		Conversations: len(s.convs),
		Messages:      len(s.msgs),
		Orders:        len(s.orders),
		Reports:       len(s.reports),
	}
}

func (s *Store) findUser(id string) *userEntity.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Store) findItem(id string) *itemEntity.Item {
	for _, it := range s.items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

func (s *Store) findConv(id string) *convEntity.Conversation {
	for _, c := range s.convs {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func copyConv(c *convEntity.Conversation) convEntity.Conversation {
	out := *c
	out.Participants = append([]string(nil), c.Participants...)
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Users implements the user repository
type Users struct{ s *Store }

// Users returns the user repository
func (s *Store) Users() *Users { return &Users{s: s} }

func (r *Users) GetByID(_ context.Context, id string) (*userEntity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	if u := r.s.findUser(id); u != nil {
		out := *u
		return &out, nil
	}
	return nil, nil
}

func (r *Users) GetByName(_ context.Context, name string) (*userEntity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	for _, u := range r.s.users {
		if u.Name == name {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (r *Users) GetByIDs(_ context.Context, ids []string) ([]userEntity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []userEntity.User
	for _, u := range r.s.users {
		if contains(ids, u.ID) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *Users) List(_ context.Context, includeArchived bool) ([]userEntity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []userEntity.User
	for _, u := range r.s.users {
		if includeArchived || !u.IsArchived {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *Users) UpdateProfile(_ context.Context, id string, p userEntity.Profile) (*userEntity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	u := r.s.findUser(id)
	if u == nil {
		return nil, nil
	}
	u.Name, u.Mobile = p.Name, p.Mobile
	if p.PasswordHash != "" {
		u.PasswordHash = p.PasswordHash
	}
	out := *u
	return &out, nil
}

func (r *Users) SetArchived(_ context.Context, id string, archived bool) (*userEntity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	u := r.s.findUser(id)
	if u == nil {
		return nil, nil
	}
	u.IsArchived = archived
	out := *u
	return &out, nil
}

func (r *Users) Delete(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return false, err
	}
	for i, u := range r.s.users {
		if u.ID == id {
			r.s.users = append(r.s.users[:i], r.s.users[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Items implements the item repository
type Items struct{ s *Store }

// Items returns the item repository
func (s *Store) Items() *Items { return &Items{s: s} }

func (r *Items) Create(_ context.Context, it *itemEntity.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	it.ID = newID()
	stored := *it
	r.s.items = append(r.s.items, &stored)
	return nil
}

func (r *Items) GetByID(_ context.Context, id string) (*itemEntity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	if it := r.s.findItem(id); it != nil {
		out := *it
		return &out, nil
	}
	return nil, nil
}

func (r *Items) GetByIDs(_ context.Context, ids []string) ([]itemEntity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []itemEntity.Item
	for _, it := range r.s.items {
		if contains(ids, it.ID) {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *Items) List(_ context.Context, f itemEntity.Filter) ([]itemEntity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []itemEntity.Item
	for _, it := range r.s.items {
		if f.Matches(it) {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *Items) Update(_ context.Context, id string, c itemEntity.Changes) (*itemEntity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	it := r.s.findItem(id)
	if it == nil {
		return nil, nil
	}
	c.Apply(it)
	out := *it
	return &out, nil
}

func (r *Items) SetArchived(_ context.Context, id string, archived bool) (*itemEntity.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	it := r.s.findItem(id)
	if it == nil {
		return nil, nil
	}
	it.IsArchived = archived
	out := *it
	return &out, nil
}

func (r *Items) SetArchivedMany(_ context.Context, ids []string, archived bool) (int64, error) {
	return r.setArchivedWhere(func(it *itemEntity.Item) bool { return contains(ids, it.ID) }, archived)
}

func (r *Items) SetArchivedByOwner(_ context.Context, ownerID string, archived bool) (int64, error) {
	return r.setArchivedWhere(func(it *itemEntity.Item) bool { return it.OwnerID == ownerID }, archived)
}

func (r *Items) setArchivedWhere(match func(*itemEntity.Item) bool, archived bool) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return 0, err
	}
	var n int64
	for _, it := range r.s.items {
		if match(it) {
			it.IsArchived = archived
			n++
		}
	}
	return n, nil
}

func (r *Items) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return 0, err
	}
	kept := r.s.items[:0]
	var n int64
	for _, it := range r.s.items {
		if it.OwnerID == ownerID {
			n++
			continue
		}
		kept = append(kept, it)
	}
	r.s.items = kept
	return n, nil
}

// Conversations implements the conversation repository
type Conversations struct{ s *Store }

// Conversations returns the conversation repository
func (s *Store) Conversations() *Conversations { return &Conversations{s: s} }

func (r *Conversations) Create(_ context.Context, c *convEntity.Conversation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	c.ID = newID()
	stored := copyConv(c)
	r.s.convs = append(r.s.convs, &stored)
	return nil
}

func (r *Conversations) GetByID(_ context.Context, id string) (*convEntity.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	if c := r.s.findConv(id); c != nil {
		out := copyConv(c)
		return &out, nil
	}
	return nil, nil
}

func (r *Conversations) FindByParticipants(_ context.Context, a, b string) (*convEntity.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	for _, c := range r.s.convs {
		if len(c.Participants) == 2 && contains(c.Participants, a) && contains(c.Participants, b) {
			out := copyConv(c)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *Conversations) GetByParticipantID(_ context.Context, userID string) ([]convEntity.Conversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []convEntity.Conversation
	for _, c := range r.s.convs {
		if contains(c.Participants, userID) {
			out = append(out, copyConv(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated)
	})
	return out, nil
}

func (r *Conversations) SetItem(_ context.Context, id, itemID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	if c := r.s.findConv(id); c != nil {
		c.ItemID = itemID
	}
	return nil
}

func (r *Conversations) SetLastMessage(_ context.Context, id, messageID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	if c := r.s.findConv(id); c != nil {
		c.LastMessageID = messageID
		c.LastUpdated = at
	}
	return nil
}

func (r *Conversations) DeleteByParticipantID(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return 0, err
	}
	kept := r.s.convs[:0]
	var n int64
	for _, c := range r.s.convs {
		if contains(c.Participants, userID) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	r.s.convs = kept
	return n, nil
}

// Messages implements the message repository
type Messages struct{ s *Store }

// Messages returns the message repository
func (s *Store) Messages() *Messages { return &Messages{s: s} }

func (r *Messages) Create(_ context.Context, m *convEntity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	m.ID = newID()
	stored := *m
	r.s.msgs = append(r.s.msgs, &stored)
	return nil
}

func (r *Messages) GetByIDs(_ context.Context, ids []string) ([]convEntity.Message, error) {
	return r.where(func(m *convEntity.Message) bool { return contains(ids, m.ID) })
}

func (r *Messages) GetByConversationID(_ context.Context, conversationID string) ([]convEntity.Message, error) {
	return r.where(func(m *convEntity.Message) bool { return m.ConversationID == conversationID })
}

func (r *Messages) where(match func(*convEntity.Message) bool) ([]convEntity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []convEntity.Message
	for _, m := range r.s.msgs {
		if match(m) {
			out = append(out, *m)
		}
	}
	convEntity.SortMessages(out)
	return out, nil
}

func (r *Messages) DeleteBySenderID(_ context.Context, senderID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return 0, err
	}
	kept := r.s.msgs[:0]
	var n int64
	for _, m := range r.s.msgs {
		if m.SenderID == senderID {
			n++
			continue
		}
		kept = append(kept, m)
	}
	r.s.msgs = kept
	return n, nil
}

// Orders implements the order repository
type Orders struct{ s *Store }

// Orders returns the order repository
func (s *Store) Orders() *Orders { return &Orders{s: s} }

func (r *Orders) Create(_ context.Context, o *orderEntity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	o.ID = newID()
	stored := *o
	r.s.orders = append(r.s.orders, &stored)
	return nil
}

func (r *Orders) GetByID(_ context.Context, id string) (*orderEntity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	for _, o := range r.s.orders {
		if o.ID == id {
			out := *o
			return &out, nil
		}
	}
	return nil, nil
}

func (r *Orders) UpdateStatus(_ context.Context, id string, status orderEntity.Status, at time.Time) (*orderEntity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	for _, o := range r.s.orders {
		if o.ID == id {
			o.Status = status
			o.UpdatedAt = at
			out := *o
			return &out, nil
		}
	}
	return nil, nil
}

func (r *Orders) ListByBuyer(_ context.Context, userID string) ([]orderEntity.Order, error) {
	return r.where(func(o *orderEntity.Order) bool { return o.BuyerID == userID })
}

func (r *Orders) ListBySeller(_ context.Context, userID string) ([]orderEntity.Order, error) {
	return r.where(func(o *orderEntity.Order) bool { return o.SellerID == userID })
}

func (r *Orders) where(match func(*orderEntity.Order) bool) ([]orderEntity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []orderEntity.Order
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		if o := r.s.orders[i]; match(o) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *Orders) DeleteByUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return 0, err
	}
	kept := r.s.orders[:0]
	var n int64
	for _, o := range r.s.orders {
		if o.BuyerID == userID || o.SellerID == userID {
			n++
			continue
		}
		kept = append(kept, o)
	}
	r.s.orders = kept
	return n, nil
}

// Reports implements the report repository for one kind
type Reports struct {
	s    *Store
	kind reportEntity.Kind
}

// Reports returns the report repository for kind
func (s *Store) Reports(kind reportEntity.Kind) *Reports { return &Reports{s: s, kind: kind} }

func (r *Reports) Create(_ context.Context, rep *reportEntity.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	rep.ID = newID()
	rep.Kind = r.kind
	stored := *rep
	r.s.reports = append(r.s.reports, &stored)
	return nil
}

func (r *Reports) List(_ context.Context) ([]reportEntity.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	var out []reportEntity.Report
	for _, rep := range r.s.reports {
		if rep.Kind == r.kind {
			out = append(out, *rep)
		}
	}
	return out, nil
}

func (r *Reports) SetStatus(_ context.Context, id string, status reportEntity.Status, at time.Time) (*reportEntity.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	for _, rep := range r.s.reports {
		if rep.ID == id && rep.Kind == r.kind {
			rep.Status = status
			rep.UpdatedAt = at
			out := *rep
			return &out, nil
		}
	}
	return nil, nil
}
