package core

import (
	"context"
	"sync"
	"testing"

	"github.com/relaychat/relaychat-server/internal/store"
)

func TestAnnounceBroadcastsPresenceToEveryone(t *testing.T) {
	st := newMemStore()
	st.addUser(&store.User{ID: 1, Username: "alice", Status: store.StatusOnline})
	hub := newTestHub(st)

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.Register(alice)
	hub.Register(bob)

	if cerr := hub.Dispatch(context.Background(), alice, &Command{Kind: CommandAnnounce}); cerr != nil {
		t.Fatalf("announce failed: %v", cerr)
	}

	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventPresence)
		if len(ev.Users) != 1 || ev.Users[0].Username != "alice" {
			t.Fatalf("unexpected presence snapshot for %s: %+v", c.ID, ev.Users)
		}
	}
}

func TestJoinRoomDeliversHistoryToCallerOnly(t *testing.T) {
	st := newMemStore()
	hub := newTestHub(st)
	ctx := context.Background()

	if _, err := st.AppendMessage(ctx, &store.Message{
		Room: "general", Sender: "bob", Content: "hi", Date: "01/01/2024", Time: "10:00",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.Register(alice)
	hub.Register(bob)

	if cerr := hub.Dispatch(ctx, alice, &Command{Kind: CommandJoinRoom, Room: "general"}); cerr != nil {
		t.Fatalf("join failed: %v", cerr)
	}

	ev := mustEvent(t, alice.Events, EventRoomHistory)
	if ev.Room != "general" || len(ev.Groups) != 1 {
		t.Fatalf("unexpected history event: %+v", ev)
	}
	mustNoEvent(t, bob.Events, EventRoomHistory)
}

func TestRelayFansOutHistoryAndNotifications(t *testing.T) {
	st := newMemStore()
	hub := newTestHub(st)
	ctx := context.Background()

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	carol := NewClient("c", "carol")
	hub.Register(alice)
	hub.Register(bob)
	hub.Register(carol)

	for _, c := range []*Client{alice, bob} {
		if cerr := hub.Dispatch(ctx, c, &Command{Kind: CommandJoinRoom, Room: "general"}); cerr != nil {
			t.Fatalf("join failed: %v", cerr)
		}
		mustEvent(t, c.Events, EventRoomHistory)
	}
	if cerr := hub.Dispatch(ctx, carol, &Command{Kind: CommandJoinRoom, Room: "tech"}); cerr != nil {
		t.Fatalf("join failed: %v", cerr)
	}
	mustEvent(t, carol.Events, EventRoomHistory)

	cmd := &Command{
		Kind: CommandSendMessage, Room: "general",
		Content: "hello", Sender: "alice", Time: "10:00", Date: "01/01/2024",
	}
	if cerr := hub.Dispatch(ctx, alice, cmd); cerr != nil {
		t.Fatalf("send failed: %v", cerr)
	}

	// Room members, sender included, get the rebuilt history.
	for _, c := range []*Client{alice, bob} {
		ev := mustEvent(t, c.Events, EventRoomHistory)
		if len(ev.Groups) != 1 || ev.Groups[0].Messages[0].Content != "hello" {
			t.Fatalf("unexpected history for %s: %+v", c.ID, ev.Groups)
		}
	}

	// Everyone but the sender gets the cross-room notification.
	notif := mustEvent(t, carol.Events, EventNotification)
	if notif.Room != "general" {
		t.Fatalf("unexpected notification room: %q", notif.Room)
	}
	mustEvent(t, bob.Events, EventNotification)
	mustNoEvent(t, alice.Events, EventNotification)

	// Carol is in another room and must not get the history.
	mustNoEvent(t, carol.Events, EventRoomHistory)
}

func TestJoinElsewhereStopsOldRoomBroadcasts(t *testing.T) {
	st := newMemStore()
	hub := newTestHub(st)
	ctx := context.Background()

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.Register(alice)
	hub.Register(bob)

	for _, c := range []*Client{alice, bob} {
		if cerr := hub.Dispatch(ctx, c, &Command{Kind: CommandJoinRoom, Room: "general"}); cerr != nil {
			t.Fatalf("join failed: %v", cerr)
		}
		mustEvent(t, c.Events, EventRoomHistory)
	}

	if cerr := hub.Dispatch(ctx, alice, &Command{
		Kind: CommandSendMessage, Room: "general",
		Content: "one", Sender: "alice", Time: "10:00", Date: "01/01/2024",
	}); cerr != nil {
		t.Fatalf("send failed: %v", cerr)
	}
	mustEvent(t, bob.Events, EventRoomHistory)

	// Bob switches to tech; the leave side of the transition is implicit.
	if cerr := hub.Dispatch(ctx, bob, &Command{Kind: CommandJoinRoom, Room: "tech", PreviousRoom: "general"}); cerr != nil {
		t.Fatalf("join failed: %v", cerr)
	}
	mustEvent(t, bob.Events, EventRoomHistory)

	if cerr := hub.Dispatch(ctx, alice, &Command{
		Kind: CommandSendMessage, Room: "general",
		Content: "two", Sender: "alice", Time: "10:01", Date: "01/01/2024",
	}); cerr != nil {
		t.Fatalf("send failed: %v", cerr)
	}

	// Bob still hears about activity, but no longer receives the history.
	mustEvent(t, bob.Events, EventNotification)
	mustNoEvent(t, bob.Events, EventRoomHistory)
}

func TestNeverJoinedReceivesOnlyPresenceAndNotifications(t *testing.T) {
	st := newMemStore()
	st.addUser(&store.User{ID: 1, Username: "alice", Status: store.StatusOnline})
	hub := newTestHub(st)
	ctx := context.Background()

	alice := NewClient("a", "alice")
	idle := NewClient("i", "idle")
	hub.Register(alice)
	hub.Register(idle)

	if cerr := hub.Dispatch(ctx, alice, &Command{Kind: CommandAnnounce}); cerr != nil {
		t.Fatalf("announce failed: %v", cerr)
	}
	if cerr := hub.Dispatch(ctx, alice, &Command{Kind: CommandJoinRoom, Room: "general"}); cerr != nil {
		t.Fatalf("join failed: %v", cerr)
	}
	mustEvent(t, alice.Events, EventRoomHistory)
	if cerr := hub.Dispatch(ctx, alice, &Command{
		Kind: CommandSendMessage, Room: "general",
		Content: "hello", Sender: "alice", Time: "10:00", Date: "01/01/2024",
	}); cerr != nil {
		t.Fatalf("send failed: %v", cerr)
	}

	mustEvent(t, idle.Events, EventPresence)
	mustEvent(t, idle.Events, EventNotification)
	mustNoEvent(t, idle.Events, EventRoomHistory)
}

func TestLogoutMarksOfflineAndExcludesInitiator(t *testing.T) {
	st := newMemStore()
	st.addUser(&store.User{ID: 7, Username: "alice", Status: store.StatusOnline})
	hub := newTestHub(st)
	ctx := context.Background()

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.Register(alice)
	hub.Register(bob)

	if cerr := hub.Dispatch(ctx, alice, &Command{Kind: CommandLogout, UserID: 7, NewMessages: 3}); cerr != nil {
		t.Fatalf("logout failed: %v", cerr)
	}

	ev := mustEvent(t, bob.Events, EventPresence)
	if len(ev.Users) != 1 {
		t.Fatalf("unexpected snapshot size: %d", len(ev.Users))
	}
	if ev.Users[0].Status != store.StatusOffline || ev.Users[0].NewMessages != 3 {
		t.Fatalf("presence not updated: %+v", ev.Users[0])
	}

	mustNoEvent(t, alice.Events, EventPresence)
}

func TestLogoutUnknownUserFailsWithoutBroadcast(t *testing.T) {
	st := newMemStore()
	hub := newTestHub(st)

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.Register(alice)
	hub.Register(bob)

	cerr := hub.Dispatch(context.Background(), alice, &Command{Kind: CommandLogout, UserID: 404})
	if cerr == nil || cerr.Code != ErrCodeUserNotFound {
		t.Fatalf("expected user_not_found, got %+v", cerr)
	}
	mustNoEvent(t, bob.Events, EventPresence)
}

func TestRelayStoreWriteFailureAbortsWithoutBroadcast(t *testing.T) {
	st := newMemStore()
	hub := newTestHub(st)
	ctx := context.Background()

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	hub.Register(alice)
	hub.Register(bob)
	for _, c := range []*Client{alice, bob} {
		if cerr := hub.Dispatch(ctx, c, &Command{Kind: CommandJoinRoom, Room: "general"}); cerr != nil {
			t.Fatalf("join failed: %v", cerr)
		}
		mustEvent(t, c.Events, EventRoomHistory)
	}

	st.failWrite = errStoreDown
	cerr := hub.Dispatch(ctx, alice, &Command{
		Kind: CommandSendMessage, Room: "general",
		Content: "lost", Sender: "alice", Time: "10:00", Date: "01/01/2024",
	})
	if cerr == nil || cerr.Code != ErrCodeStoreWrite {
		t.Fatalf("expected store_write_failed, got %+v", cerr)
	}

	mustNoEvent(t, bob.Events, EventRoomHistory)
	mustNoEvent(t, bob.Events, EventNotification)
}

func TestConcurrentSendsProduceSelfConsistentSnapshots(t *testing.T) {
	st := newMemStore()
	hub := newTestHub(st)
	ctx := context.Background()

	alice := NewClient("a", "alice")
	bob := NewClient("b", "bob")
	// Large buffer so the observer never drops a snapshot.
	observer := &Client{ID: "o", Name: "observer", Events: make(chan *Event, 64)}
	hub.Register(alice)
	hub.Register(bob)
	hub.Register(observer)

	for _, c := range []*Client{alice, bob, observer} {
		if cerr := hub.Dispatch(ctx, c, &Command{Kind: CommandJoinRoom, Room: "general"}); cerr != nil {
			t.Fatalf("join failed: %v", cerr)
		}
		mustEvent(t, c.Events, EventRoomHistory)
	}

	const perSender = 10
	var wg sync.WaitGroup
	for _, sender := range []*Client{alice, bob} {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				if cerr := hub.Dispatch(ctx, c, &Command{
					Kind: CommandSendMessage, Room: "general",
					Content: "msg", Sender: c.Name, Time: "10:00", Date: "01/01/2024",
				}); cerr != nil {
					t.Errorf("send from %s failed: %v", c.Name, cerr)
					return
				}
			}
		}(sender)
	}
	wg.Wait()

	// Inter-snapshot ordering is not guaranteed, but every delivered
	// snapshot must be internally consistent: unique message IDs and
	// groups sorted by the transposed key.
	snapshots := 0
	largest := 0
	for {
		var ev *Event
		select {
		case ev = <-observer.Events:
		default:
		}
		if ev == nil {
			break
		}
		if ev.Kind != EventRoomHistory {
			continue
		}
		snapshots++
		seen := make(map[int64]bool)
		for i, g := range ev.Groups {
			if i > 0 && dateSortKey(ev.Groups[i-1].Date) >= dateSortKey(g.Date) {
				t.Fatalf("groups out of order in snapshot: %q then %q", ev.Groups[i-1].Date, g.Date)
			}
			for _, m := range g.Messages {
				if seen[m.ID] {
					t.Fatalf("duplicate message %d in snapshot", m.ID)
				}
				seen[m.ID] = true
			}
		}
		if len(seen) > largest {
			largest = len(seen)
		}
	}
	if snapshots == 0 {
		t.Fatal("observer received no history snapshots")
	}
	// The relay whose append landed last reads after every other append, so
	// its snapshot must carry the full message set.
	if largest != perSender*2 {
		t.Fatalf("expected a complete snapshot of %d messages, largest had %d", perSender*2, largest)
	}
}
