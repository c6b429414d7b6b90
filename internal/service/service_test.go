package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"socialdesk/internal/core/cache"
	"socialdesk/internal/domain"
	"socialdesk/internal/event"
	"socialdesk/internal/repo"
	"socialdesk/internal/service"
	"socialdesk/internal/testutil"
	"socialdesk/pkg/utils"
)

type fixture struct {
	db      *gorm.DB
	friends *service.FriendService
	notify  *service.NotificationEmitter
	stats   *service.StatsService
	tickets *service.TicketService
	admins  *service.AdminService
}

func newFixture(t *testing.T, statsOpt service.StatsOptions, c *cache.Cache) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	hasher := utils.BcryptHasher{Cost: bcrypt.MinCost}
	identity := repo.NewIdentityDirectory(db, hasher)
	bus := event.NewBus(nil)

	f := &fixture{db: db}
	statsOpt.Driver = "sqlite"
	f.notify = service.NewNotificationEmitter(db, nil)
	f.notify.Register(bus)
	f.stats = service.NewStatsService(db, c, statsOpt, nil)
	f.stats.Register(bus)
	f.friends = service.NewFriendService(db, identity, bus, nil)
	f.tickets = service.NewTicketService(db, identity, bus, f.stats, nil)
	admins, err := service.NewAdminService(db, hasher, identity, nil)
	require.NoError(t, err)
	f.admins = admins
	return f
}

func (f *fixture) count(t *testing.T, model any, where ...any) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestSendFriendRequest_Guards(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	alice := testutil.SeedUser(t, f.db, "alice@example.com", "Alice")
	bob := testutil.SeedUser(t, f.db, "bob@example.com", "Bob")

	req, err := f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.Status)
	assert.Equal(t, bob, req.ReceiverID)

	_, err = f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
	assert.ErrorIs(t, err, domain.ErrDuplicateRequest)

	_, err = f.friends.SendFriendRequest(ctx, alice, "alice@example.com")
	assert.ErrorIs(t, err, domain.ErrSelfReference)

	_, err = f.friends.SendFriendRequest(ctx, alice, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.friends.SendFriendRequest(ctx, alice, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// one notification for the single successful send
	assert.EqualValues(t, 1, f.count(t, &domain.Notification{}, "user_id = ?", bob))
	ns, err := f.notify.ListNotifications(ctx, bob, 0)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, domain.NotifyFriendRequest, ns[0].Type)
	assert.Equal(t, "New friend request", ns[0].Title)
	assert.Equal(t, "Alice sent you a friend request", ns[0].Message)
	assert.Equal(t, req.ID, ns[0].Data["request_id"])
	assert.Equal(t, alice, ns[0].Data["sender_id"])
}

func TestSendFriendRequest_MessageFallsBackToEmail(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	alice := testutil.SeedUser(t, f.db, "alice@example.com", "")
	bob := testutil.SeedUser(t, f.db, "bob@example.com", "Bob")

	_, err := f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
	require.NoError(t, err)

	ns, err := f.notify.ListNotifications(ctx, bob, 0)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "alice@example.com sent you a friend request", ns[0].Message)
}

func TestSendFriendRequest_AlreadyFriends(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	alice := testutil.SeedUser(t, f.db, "alice@example.com", "Alice")
	bob := testutil.SeedUser(t, f.db, "bob@example.com", "")

	req, err := f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
	require.NoError(t, err)
	_, err = f.friends.RespondToFriendRequest(ctx, bob, req.ID, true)
	require.NoError(t, err)

	_, err = f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
	assert.ErrorIs(t, err, domain.ErrAlreadyFriends)
	_, err = f.friends.SendFriendRequest(ctx, bob, "alice@example.com")
	assert.ErrorIs(t, err, domain.ErrAlreadyFriends, "friendship is symmetric")

	friends, err := f.friends.ListFriends(ctx, bob)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, alice, friends[0].ID)
	assert.Equal(t, "Alice", friends[0].DisplayName)
}

func TestRespondToFriendRequest_AcceptTwice(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	alice := testutil.SeedUser(t, f.db, "alice@example.com", "Alice")
	bob := testutil.SeedUser(t, f.db, "bob@example.com", "Bob")

	req, err := f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
	require.NoError(t, err)

	got, err := f.friends.RespondToFriendRequest(ctx, bob, req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestAccepted, got.Status)
	assert.NotNil(t, got.HandledAt)

	_, err = f.friends.RespondToFriendRequest(ctx, bob, req.ID, true)
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	_, err = f.friends.RespondToFriendRequest(ctx, bob, req.ID, false)
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)

	assert.EqualValues(t, 1, f.count(t, &domain.Friendship{}))
	assert.EqualValues(t, 1, f.count(t, &domain.Notification{}, "user_id = ? AND type = ?", alice, domain.NotifyFriendAccepted))
}

func TestRespondToFriendRequest_Errors(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	alice := testutil.SeedUser(t, f.db, "alice@example.com", "Alice")
	bob := testutil.SeedUser(t, f.db, "bob@example.com", "Bob")

	_, err := f.friends.RespondToFriendRequest(ctx, bob, "missing", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	req, err := f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
	require.NoError(t, err)

	_, err = f.friends.RespondToFriendRequest(ctx, alice, req.ID, true)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "only the receiver decides")

	got, err := f.friends.RespondToFriendRequest(ctx, bob, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestRejected, got.Status)
	assert.Zero(t, f.count(t, &domain.Friendship{}))
	assert.Zero(t, f.count(t, &domain.Notification{}, "user_id = ?", alice), "rejections are silent")

	// a rejected request frees the pair for a new one
	_, err = f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
	assert.NoError(t, err)
}

func TestRespondToFriendRequest_ReversePending(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	alice := testutil.SeedUser(t, f.db, "alice@example.com", "Alice")
	bob := testutil.SeedUser(t, f.db, "bob@example.com", "Bob")

	ab, err := f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
	require.NoError(t, err)
	ba, err := f.friends.SendFriendRequest(ctx, bob, "alice@example.com")
	require.NoError(t, err, "reverse direction is a separate request")

	_, err = f.friends.RespondToFriendRequest(ctx, bob, ab.ID, true)
	require.NoError(t, err)
	_, err = f.friends.RespondToFriendRequest(ctx, alice, ba.ID, true)
	require.NoError(t, err)

	assert.EqualValues(t, 1, f.count(t, &domain.Friendship{}))

	out, err := f.friends.ListRequests(ctx, alice, domain.DirectionOutgoing, domain.RequestAccepted)
	require.NoError(t, err)
	assert.Len(t, out, 1)
	_, err = f.friends.ListRequests(ctx, alice, "sideways", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRespondToFriendRequest_ConcurrentAccept(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	alice := testutil.SeedUser(t, f.db, "alice@example.com", "Alice")
	bob := testutil.SeedUser(t, f.db, "bob@example.com", "Bob")

	req, err := f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.friends.RespondToFriendRequest(ctx, bob, req.ID, true)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	}
	assert.Equal(t, 1, ok)
	assert.EqualValues(t, 1, f.count(t, &domain.Friendship{}))
	assert.EqualValues(t, 1, f.count(t, &domain.Notification{}, "user_id = ? AND type = ?", alice, domain.NotifyFriendAccepted))
}

func TestSendFriendRequest_ConcurrentDuplicate(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	alice := testutil.SeedUser(t, f.db, "alice@example.com", "Alice")
	bob := testutil.SeedUser(t, f.db, "bob@example.com", "Bob")

	const n = 6
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.friends.SendFriendRequest(ctx, alice, "bob@example.com")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
	}
	assert.Equal(t, 1, ok)
	assert.EqualValues(t, 1, f.count(t, &domain.FriendRequest{}, "status = ?", domain.RequestPending))
	assert.EqualValues(t, 1, f.count(t, &domain.Notification{}, "user_id = ?", bob))
}

func TestStatistics_StableAndTriggered(t *testing.T) {
	for _, mode := range []string{service.StatsModeCached, service.StatsModeLive} {
		t.Run(mode, func(t *testing.T) {
			f := newFixture(t, service.StatsOptions{Mode: mode}, nil)
			ctx := context.Background()
			testutil.SeedUser(t, f.db, "alice@example.com", "Alice")
			_, err := f.tickets.CreateTicket(ctx, "alice@example.com", "broken", "it broke")
			require.NoError(t, err)

			first, err := f.stats.GetStatistics(ctx)
			require.NoError(t, err)
			second, err := f.stats.GetStatistics(ctx)
			require.NoError(t, err)
			assert.True(t, first.SameCounters(*second), "no writes, same counters")
			assert.EqualValues(t, 1, first.TotalUsers)

			_, err = f.tickets.CreateTicket(ctx, "alice@example.com", "still broken", "")
			require.NoError(t, err)
			after, err := f.stats.GetStatistics(ctx)
			require.NoError(t, err)
			assert.Equal(t, first.TotalTickets+1, after.TotalTickets)
			assert.Equal(t, first.PendingTickets+1, after.PendingTickets)
			assert.Equal(t, first.ResolvedTickets, after.ResolvedTickets)
		})
	}
}

func TestStatistics_SingletonRow(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()

	snap, err := f.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, snap.TotalTickets)

	tk, err := f.tickets.CreateTicket(ctx, "x@example.com", "t", "")
	require.NoError(t, err)
	_, err = f.tickets.SetTicketStatus(ctx, tk.ID, domain.TicketResolved)
	require.NoError(t, err)
	_, err = f.stats.Recompute(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 1, f.count(t, &domain.StatisticsSnapshot{}))
	snap, err = f.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, snap.TotalTickets)
	assert.EqualValues(t, 0, snap.PendingTickets)
	assert.EqualValues(t, 1, snap.ResolvedTickets)
}

func TestStatistics_RedisReadThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })

	f := newFixture(t, service.StatsOptions{CacheKey: "stats:test", CacheTTL: time.Minute}, c)
	ctx := context.Background()

	before, err := f.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("stats:test"))

	_, err = f.tickets.CreateTicket(ctx, "x@example.com", "t", "")
	require.NoError(t, err)
	assert.False(t, mr.Exists("stats:test"), "ticket writes drop the cached snapshot")

	after, err := f.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.TotalTickets+1, after.TotalTickets)

	// redis going away only costs the cache
	mr.Close()
	again, err := f.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.True(t, after.SameCounters(*again))
}

func TestReplyToTicket_NotifiesOnce(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	owner := testutil.SeedUser(t, f.db, "owner@example.com", "Owner")

	tk, err := f.tickets.CreateTicket(ctx, "owner@example.com", "Login fails", "")
	require.NoError(t, err)

	got, err := f.tickets.ReplyToTicket(ctx, tk.ID, "try again")
	require.NoError(t, err)
	assert.Equal(t, "try again", got.Reply)
	assert.NotNil(t, got.RepliedAt)

	got, err = f.tickets.ReplyToTicket(ctx, tk.ID, "try again later")
	require.NoError(t, err)
	assert.Equal(t, "try again later", got.Reply)

	assert.EqualValues(t, 1, f.count(t, &domain.Notification{}, "user_id = ? AND type = ?", owner, domain.NotifyTicketReply))

	_, err = f.tickets.ReplyToTicket(ctx, "missing", "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.tickets.ReplyToTicket(ctx, tk.ID, " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.tickets.ReplyToTicket(ctx, tk.ID, strings.Repeat("x", domain.MaxReplyLen+1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReplyToTicket_UnknownOwner(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()

	tk, err := f.tickets.CreateTicket(ctx, "ghost@example.com", "Hello", "")
	require.NoError(t, err)
	_, err = f.tickets.ReplyToTicket(ctx, tk.ID, "hi")
	require.NoError(t, err)
	assert.Zero(t, f.count(t, &domain.Notification{}))
}

func TestSetTicketStatus(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()

	_, err := f.tickets.SetTicketStatus(ctx, "missing", domain.TicketResolved)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	tk, err := f.tickets.CreateTicket(ctx, "x@example.com", "t", "")
	require.NoError(t, err)
	_, err = f.tickets.SetTicketStatus(ctx, tk.ID, "closed")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := f.tickets.SetTicketStatus(ctx, tk.ID, domain.TicketInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketInProgress, got.Status)
}

func seedAdmins(t *testing.T, f *fixture) {
	t.Helper()
	n, err := f.admins.Bootstrap(context.Background(), []domain.AdminSeed{
		{ID: "root", Name: "Root", Role: "super", Password: "s3cret", CanChangePassword: true},
		{ID: "ops", Password: "opspass"},
		{ID: "", Password: "ignored"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestAdmin_AuthenticateIndistinguishable(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	seedAdmins(t, f)

	p, err := f.admins.Authenticate(ctx, "root", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, domain.AdminProfile{ID: "root", Name: "Root", Role: "super", CanChangePassword: true}, p)

	_, errUnknown := f.admins.Authenticate(ctx, "nobody", "s3cret")
	_, errWrong := f.admins.Authenticate(ctx, "root", "wrong")
	require.Error(t, errUnknown)
	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrong)
}

func TestAdmin_ChangePassword(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	seedAdmins(t, f)

	assert.ErrorIs(t, f.admins.ChangePassword(ctx, "root", "wrong", "next"), domain.ErrInvalidCredentials)
	assert.ErrorIs(t, f.admins.ChangePassword(ctx, "nobody", "s3cret", "next"), domain.ErrNotFound)
	// ops may not change its password, but a wrong old password reads the same as for anyone else
	assert.ErrorIs(t, f.admins.ChangePassword(ctx, "ops", "wrong", "next"), domain.ErrInvalidCredentials)
	assert.ErrorIs(t, f.admins.ChangePassword(ctx, "ops", "opspass", "next"), domain.ErrUnauthorized)
	assert.ErrorIs(t, f.admins.ChangePassword(ctx, "root", "s3cret", ""), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.admins.ChangePassword(ctx, "root", "s3cret", strings.Repeat("é", 40)), domain.ErrInvalidInput)

	require.NoError(t, f.admins.ChangePassword(ctx, "root", "s3cret", "next"))

	_, err := f.admins.Authenticate(ctx, "root", "s3cret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = f.admins.Authenticate(ctx, "root", "next")
	assert.NoError(t, err)

	// bootstrap never overwrites an existing account
	seeded, err := f.admins.Bootstrap(ctx, []domain.AdminSeed{{ID: "root", Password: "s3cret"}})
	require.NoError(t, err)
	assert.Zero(t, seeded)
	_, err = f.admins.Authenticate(ctx, "root", "next")
	assert.NoError(t, err)
}

func TestAdmin_ResetPassword(t *testing.T) {
	f := newFixture(t, service.StatsOptions{}, nil)
	ctx := context.Background()
	seedAdmins(t, f)
	uid := testutil.SeedUser(t, f.db, "user@example.com", "User")

	assert.ErrorIs(t, f.admins.ResetPassword(ctx, uid, "pw", "nobody"), domain.ErrUnauthorized)
	assert.ErrorIs(t, f.admins.ResetPassword(ctx, "missing", "pw", "ops"), domain.ErrNotFound)
	assert.ErrorIs(t, f.admins.ResetPassword(ctx, uid, strings.Repeat("é", 40), "ops"), domain.ErrInvalidInput)
	require.NoError(t, f.admins.ResetPassword(ctx, uid, "fresh-pw", "ops"))

	var hash string
	require.NoError(t, f.db.Table("users").Select("password_hash").Where("id = ?", uid).Scan(&hash).Error)
	assert.True(t, utils.BcryptHasher{}.Verify("fresh-pw", hash))
}
