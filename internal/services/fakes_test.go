package services

import (
	"context"
	"io"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/campus-connect/backend/internal/models"
	"github.com/anonto42/campus-connect/backend/internal/repositories"
	"github.com/anonto42/campus-connect/backend/pkg/worker"
)

func parseOID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repositories.ErrInvalidID
	}
	return oid, nil
}

// emitted is one frame recorded by fakeTransport. Channel is empty for broadcasts.
type emitted struct {
	Channel string
	Event   string
	Payload interface{}
}

type fakeTransport struct {
	mu     sync.Mutex
	frames []emitted
	err    error
}

func (t *fakeTransport) Emit(_ context.Context, channel, event string, payload interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, emitted{Channel: channel, Event: event, Payload: payload})
	return t.err
}

func (t *fakeTransport) BroadcastAll(_ context.Context, event string, payload interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, emitted{Event: event, Payload: payload})
	return t.err
}

func (t *fakeTransport) to(channel, event string) []emitted {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []emitted
	for _, f := range t.frames {
		if f.Channel == channel && f.Event == event {
			out = append(out, f)
		}
	}
	return out
}

func (t *fakeTransport) broadcasts(event string) []emitted {
	return t.to("", event)
}

type fakeNotifications struct {
	mu        sync.Mutex
	docs      map[primitive.ObjectID]*models.Notification
	deleteErr map[string]error
	feed      chan string
}

func newFakeNotifications() *fakeNotifications {
	return &fakeNotifications{
		docs:      map[primitive.ObjectID]*models.Notification{},
		deleteErr: map[string]error{},
	}
}

func (r *fakeNotifications) put(n models.Notification) *models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	r.docs[n.ID] = &n
	cp := n
	return &cp
}

func (r *fakeNotifications) findKey(key models.NotificationKey) *models.Notification {
	for _, n := range r.docs {
		if n.UserID == key.UserID && n.Type == key.Type && n.RelatedID == key.RelatedID {
			return n
		}
	}
	return nil
}

func (r *fakeNotifications) Increment(_ context.Context, key models.NotificationKey, refs models.Refs, at time.Time) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.findKey(key)
	if n == nil {
		n = &models.Notification{ID: primitive.NewObjectID(), UserID: key.UserID, Type: key.Type, RelatedID: key.RelatedID}
		r.docs[n.ID] = n
	}
	n.Count++
	n.CreatedAt = at
	mergeRefs(&n.Refs, refs)
	cp := *n
	return &cp, nil
}

func mergeRefs(dst *models.Refs, src models.Refs) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.RequestID, src.RequestID)
	set(&dst.MessageID, src.MessageID)
	set(&dst.PostID, src.PostID)
	set(&dst.CommentID, src.CommentID)
	set(&dst.BanRequestID, src.BanRequestID)
	set(&dst.SenderID, src.SenderID)
}

func (r *fakeNotifications) SetMessage(_ context.Context, id primitive.ObjectID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.docs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	n.Message = message
	return nil
}

func (r *fakeNotifications) FindByKey(_ context.Context, key models.NotificationKey) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.findKey(key)
	if n == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotifications) GetByID(_ context.Context, id string) (*models.Notification, error) {
	oid, err := parseOID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.docs[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNotifications) ListByUser(_ context.Context, userID string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.docs {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeNotifications) ListAll(_ context.Context) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Notification, 0, len(r.docs))
	for _, n := range r.docs {
		out = append(out, *n)
	}
	return out, nil
}

func (r *fakeNotifications) update(id string, fn func(*models.Notification)) (*models.Notification, error) {
	oid, err := parseOID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.docs[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	fn(n)
	cp := *n
	return &cp, nil
}

func (r *fakeNotifications) MarkRead(_ context.Context, id string) (*models.Notification, error) {
	return r.update(id, func(n *models.Notification) { n.Read = true })
}

func (r *fakeNotifications) MarkViewed(_ context.Context, id string) (*models.Notification, error) {
	return r.update(id, func(n *models.Notification) { n.Viewed = true })
}

func (r *fakeNotifications) MarkAllViewed(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, n := range r.docs {
		if n.UserID == userID && !n.Viewed {
			n.Viewed = true
			ids = append(ids, n.ID.Hex())
		}
	}
	return ids, nil
}

func (r *fakeNotifications) Delete(_ context.Context, id string) error {
	oid, err := parseOID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.deleteErr[id]; err != nil {
		return err
	}
	if _, ok := r.docs[oid]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.docs, oid)
	return nil
}

func (r *fakeNotifications) WatchDeletions(_ context.Context) (repositories.DeletionStream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.feed == nil {
		r.feed = make(chan string, 16)
	}
	return &fakeStream{ids: r.feed}, nil
}

func (r *fakeNotifications) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

type fakeStream struct {
	ids <-chan string
}

func (s *fakeStream) Next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case id, ok := <-s.ids:
		if !ok {
			return "", io.EOF
		}
		return id, nil
	}
}

func (s *fakeStream) Close(context.Context) error { return nil }

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUsers(users ...models.User) *fakeUsers {
	r := &fakeUsers{users: map[string]*models.User{}}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
	}
	return r
}

func (r *fakeUsers) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsers) GetByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.FirebaseUID != nil && *u.FirebaseUID == uid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUsers) GetByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUsers) ListIDsByRole(_ context.Context, role models.Role) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, u := range r.users {
		if u.Role == role {
			ids = append(ids, u.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeUsers) SetBanned(_ context.Context, id string, banned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Banned = banned
	return nil
}

type pair [2]string

func pairOf(a, b string) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

type fakeFriendships struct {
	mu       sync.Mutex
	users    *fakeUsers
	requests map[string]*models.FriendRequest
	known    map[pair]bool
	seq      int
}

func newFakeFriendships(users *fakeUsers) *fakeFriendships {
	return &fakeFriendships{users: users, requests: map[string]*models.FriendRequest{}, known: map[pair]bool{}}
}

func (r *fakeFriendships) CreateRequest(_ context.Context, req *models.FriendRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	req.ID = "fr-" + strconv.Itoa(r.seq)
	req.CreatedAt = time.Now()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeFriendships) GetRequest(_ context.Context, id string) (*models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeFriendships) FindRequestBetween(_ context.Context, a, b string) (*models.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if pairOf(req.SenderID, req.ReceiverID) == pairOf(a, b) {
			cp := *req
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeFriendships) list(match func(*models.FriendRequest) bool) []models.FriendRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.FriendRequest
	for _, req := range r.requests {
		if match(req) {
			out = append(out, *req)
		}
	}
	return out
}

func (r *fakeFriendships) ListIncoming(_ context.Context, userID string) ([]models.FriendRequest, error) {
	return r.list(func(req *models.FriendRequest) bool { return req.ReceiverID == userID }), nil
}

func (r *fakeFriendships) ListOutgoing(_ context.Context, userID string) ([]models.FriendRequest, error) {
	return r.list(func(req *models.FriendRequest) bool { return req.SenderID == userID }), nil
}

func (r *fakeFriendships) DeleteRequest(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, id)
	return nil
}

func (r *fakeFriendships) AreAcquainted(_ context.Context, a, b string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.known[pairOf(a, b)], nil
}

func (r *fakeFriendships) AddAcquaintance(_ context.Context, a, b string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[pairOf(a, b)] = true
	return nil
}

func (r *fakeFriendships) RemoveAcquaintance(_ context.Context, a, b string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.known[pairOf(a, b)] {
		return repositories.ErrNotFound
	}
	delete(r.known, pairOf(a, b))
	return nil
}

func (r *fakeFriendships) ListAcquaintances(ctx context.Context, userID string) ([]models.User, error) {
	r.mu.Lock()
	var ids []string
	for p := range r.known {
		switch userID {
		case p[0]:
			ids = append(ids, p[1])
		case p[1]:
			ids = append(ids, p[0])
		}
	}
	r.mu.Unlock()
	sort.Strings(ids)
	return r.users.GetByIDs(ctx, ids)
}

type fakeMessages struct {
	mu   sync.Mutex
	msgs []models.Message
}

func (r *fakeMessages) Create(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *fakeMessages) ExistsBetween(ctx context.Context, a, b string) (bool, error) {
	msgs, _ := r.Conversation(ctx, a, b)
	return len(msgs) > 0, nil
}

func (r *fakeMessages) Conversation(_ context.Context, a, b string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.msgs {
		if m.GroupID == "" && pairOf(m.SenderID, m.ReceiverID) == pairOf(a, b) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessages) GroupHistory(_ context.Context, groupID string) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.msgs {
		if m.GroupID == groupID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeGroups struct {
	mu     sync.Mutex
	groups map[primitive.ObjectID]*models.Group
}

func newFakeGroups() *fakeGroups {
	return &fakeGroups{groups: map[primitive.ObjectID]*models.Group{}}
}

func copyGroup(g *models.Group) *models.Group {
	cp := *g
	cp.Members = append([]string(nil), g.Members...)
	cp.UnreadCounts = make(map[string]int, len(g.UnreadCounts))
	for k, v := range g.UnreadCounts {
		cp.UnreadCounts[k] = v
	}
	return &cp
}

func (r *fakeGroups) Create(_ context.Context, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	group.ID = primitive.NewObjectID()
	r.groups[group.ID] = copyGroup(group)
	return nil
}

func (r *fakeGroups) GetByID(_ context.Context, id string) (*models.Group, error) {
	oid, err := parseOID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyGroup(g), nil
}

func (r *fakeGroups) ListByMember(_ context.Context, userID string) ([]models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Group
	for _, g := range r.groups {
		if g.IsMember(userID) {
			out = append(out, *copyGroup(g))
		}
	}
	return out, nil
}

func (r *fakeGroups) SetMembers(_ context.Context, id primitive.ObjectID, members []string, unread map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return repositories.ErrNotFound
	}
	g.Members = append([]string(nil), members...)
	g.UnreadCounts = unread
	return nil
}

func (r *fakeGroups) SetUnreadCounts(_ context.Context, id primitive.ObjectID, unread map[string]int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return repositories.ErrNotFound
	}
	g.UnreadCounts = unread
	return nil
}

func (r *fakeGroups) ResetUnread(_ context.Context, id primitive.ObjectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return repositories.ErrNotFound
	}
	g.UnreadCounts[userID] = 0
	return nil
}

type fakePosts struct {
	mu    sync.Mutex
	posts map[primitive.ObjectID]*models.Post
}

func newFakePosts() *fakePosts {
	return &fakePosts{posts: map[primitive.ObjectID]*models.Post{}}
}

func (r *fakePosts) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID()
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *fakePosts) GetByID(_ context.Context, id string) (*models.Post, error) {
	oid, err := parseOID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[oid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePosts) List(_ context.Context, skip, limit int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Post
	for _, p := range r.posts {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePosts) AddReaction(_ context.Context, id primitive.ObjectID, userID string, like bool) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if like {
		if !containsID(p.Likes, userID) {
			p.Likes = append(p.Likes, userID)
		}
		p.Dislikes = withoutID(p.Dislikes, userID)
	} else {
		if !containsID(p.Dislikes, userID) {
			p.Dislikes = append(p.Dislikes, userID)
		}
		p.Likes = withoutID(p.Likes, userID)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePosts) RemoveReaction(_ context.Context, id primitive.ObjectID, userID string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p.Likes = withoutID(p.Likes, userID)
	p.Dislikes = withoutID(p.Dislikes, userID)
	cp := *p
	return &cp, nil
}

func (r *fakePosts) AddComment(_ context.Context, id primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p.Comments = append(p.Comments, comment)
	cp := *p
	return &cp, nil
}

type fakeBanRequests struct {
	mu   sync.Mutex
	reqs map[string]*models.BanRequest
	seq  int
}

func newFakeBanRequests() *fakeBanRequests {
	return &fakeBanRequests{reqs: map[string]*models.BanRequest{}}
}

func (r *fakeBanRequests) Create(_ context.Context, req *models.BanRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	req.ID = "ban-" + strconv.Itoa(r.seq)
	cp := *req
	r.reqs[req.ID] = &cp
	return nil
}

func (r *fakeBanRequests) GetByID(_ context.Context, id string) (*models.BanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.reqs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *fakeBanRequests) List(_ context.Context, status models.BanRequestStatus) ([]models.BanRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BanRequest
	for _, req := range r.reqs {
		if status == "" || req.Status == status {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeBanRequests) Resolve(_ context.Context, id string, status models.BanRequestStatus, adminID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.reqs[id]
	if !ok || req.Status != models.BanRequestPending {
		return repositories.ErrNotFound
	}
	req.Status = status
	req.ResolvedBy = adminID
	return nil
}

var (
	alice   = models.User{ID: "alice", Name: "Alice", Email: "alice@campus.edu", Role: models.RoleStudent}
	bob     = models.User{ID: "bob", Name: "Bob", Email: "bob@campus.edu", Role: models.RoleStudent}
	carol   = models.User{ID: "carol", Name: "Carol", Email: "carol@campus.edu", Role: models.RoleStudent}
	faculty = models.User{ID: "prof", Name: "Prof", Email: "prof@campus.edu", Role: models.RoleFaculty}
	admin   = models.User{ID: "admin", Name: "Admin", Email: "admin@campus.edu", Role: models.RoleAdmin}
)

// env wires every service against in-memory stores.
type env struct {
	clock         *time.Time
	transport     *fakeTransport
	notifications *fakeNotifications
	users         *fakeUsers
	friendships   *fakeFriendships
	messages      *fakeMessages
	groups        *fakeGroups
	posts         *fakePosts
	bans          *fakeBanRequests
	ledger        *DeletionLedger

	aggregator *Aggregator
	router     *Router
	notifySvc  *NotificationService
	messaging  *MessagingService
	friendSvc  *FriendshipService
	postSvc    *PostService
	banSvc     *BanRequestService
	groupSvc   *GroupService
	sweeper    *Sweeper
}

func newEnv(t *testing.T, users ...models.User) *env {
	t.Helper()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := &env{
		clock:         &start,
		transport:     &fakeTransport{},
		notifications: newFakeNotifications(),
		users:         newFakeUsers(users...),
		messages:      &fakeMessages{},
		groups:        newFakeGroups(),
		posts:         newFakePosts(),
		bans:          newFakeBanRequests(),
	}
	e.friendships = newFakeFriendships(e.users)
	now := func() time.Time { return *e.clock }

	ledger, err := NewDeletionLedger(128, time.Hour)
	require.NoError(t, err)
	e.ledger = ledger

	pool, err := worker.New("test", 4)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Release(time.Second) })

	e.aggregator = NewAggregator(e.notifications, e.transport, e.ledger)
	e.aggregator.now = now
	e.router = NewRouter(e.users, e.aggregator, e.transport, pool)
	e.notifySvc = NewNotificationService(e.notifications, e.transport, e.ledger)
	e.notifySvc.now = now
	e.messaging = NewMessagingService(e.messages, e.groups, e.users, e.friendships, e.router)
	e.messaging.now = now
	e.friendSvc = NewFriendshipService(e.friendships, e.users, e.aggregator, e.router)
	e.postSvc = NewPostService(e.posts, e.users, e.router)
	e.postSvc.now = now
	e.banSvc = NewBanRequestService(e.bans, e.users, e.router)
	e.groupSvc = NewGroupService(e.groups, e.users)
	e.groupSvc.now = now
	e.sweeper = NewSweeper(e.notifications, e.transport, e.ledger, time.Hour)
	e.sweeper.now = now
	return e
}

func (e *env) advance(d time.Duration) {
	*e.clock = e.clock.Add(d)
}

func (e *env) notificationFor(t *testing.T, userID string, kind models.NotificationKind) *models.Notification {
	t.Helper()
	list, err := e.notifications.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	var found *models.Notification
	for i := range list {
		if list[i].Type == kind {
			require.Nil(t, found, "more than one %s notification for %s", kind, userID)
			found = &list[i]
		}
	}
	require.NotNil(t, found, "no %s notification for %s", kind, userID)
	return found
}
