package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/unihaven/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

func testEvent(kind EventKind) Event {
	return Event{
		Kind: kind,
		Reservation: &model.Reservation{
			ID:           42,
			ReservedFrom: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			ReservedTo:   time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			Status:       model.ReservationStatusConfirmed,
			Accommodation: &model.Accommodation{
				Name:         "Flat",
				Type:         model.AccommodationTypeApartment,
				BuildingName: "Tower",
				Address:      "1 Main Street",
			},
			Member: &model.Member{UniversityID: 7, Name: "Alice", Email: "alice@example.com"},
		},
		OldStatus: model.ReservationStatusPending,
	}
}

type staticDirectory struct {
	specialists []*model.Specialist
	err         error
	asked       []int64
}

func (d *staticDirectory) ListSpecialistsByUniversity(_ context.Context, universityID int64) ([]*model.Specialist, error) {
	d.asked = append(d.asked, universityID)
	return d.specialists, d.err
}

func TestEventText(t *testing.T) {
	e := testEvent(EventStatusChanged)

	assert.Equal(t, int64(7), e.UniversityID())
	assert.Equal(t, "Reservation Status Changed: PENDING → Confirmed", e.Subject())

	body := e.Body()
	assert.Contains(t, body, "from PENDING to Confirmed")
	assert.Contains(t, body, "Accommodation: Flat")
	assert.Contains(t, body, "Reserved by: Alice (alice@example.com)")
	assert.Contains(t, body, "Period: 2025-01-10 to 2025-01-15")
	assert.Contains(t, body, "Reservation ID: 42")
	assert.NotContains(t, body, "Status: ")

	assert.Equal(t, "New Reservation Created", testEvent(EventCreated).Subject())
	assert.Contains(t, testEvent(EventCancelled).Body(), "Status: Confirmed")
}

type recordingSender struct {
	mu       sync.Mutex
	messages []*gomail.Message
	err      error
}

func (s *recordingSender) DialAndSend(m ...*gomail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m...)
	return s.err
}

func TestEmailNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("sends to specialists with email", func(t *testing.T) {
		sender := &recordingSender{}
		dir := &staticDirectory{specialists: []*model.Specialist{
			{ID: 1, Email: "a@uni.edu"},
			{ID: 2},
			{ID: 3, Email: "b@uni.edu"},
		}}
		n := NewEmailNotifier(sender, "noreply@unihaven.dev", dir, zap.NewNop())

		require.NoError(t, n.Notify(ctx, testEvent(EventCreated)))
		require.Len(t, sender.messages, 1)
		m := sender.messages[0]
		assert.Equal(t, []string{"a@uni.edu", "b@uni.edu"}, m.GetHeader("To"))
		assert.Equal(t, []string{"noreply@unihaven.dev"}, m.GetHeader("From"))
		assert.Equal(t, []string{"New Reservation Created"}, m.GetHeader("Subject"))
		assert.Equal(t, []int64{7}, dir.asked)
	})

	t.Run("no recipients", func(t *testing.T) {
		sender := &recordingSender{}
		n := NewEmailNotifier(sender, "noreply@unihaven.dev", &staticDirectory{}, zap.NewNop())

		require.NoError(t, n.Notify(ctx, testEvent(EventCreated)))
		assert.Empty(t, sender.messages)
	})

	t.Run("send failure", func(t *testing.T) {
		sender := &recordingSender{err: errors.New("smtp down")}
		dir := &staticDirectory{specialists: []*model.Specialist{{ID: 1, Email: "a@uni.edu"}}}
		n := NewEmailNotifier(sender, "noreply@unihaven.dev", dir, zap.NewNop())

		err := n.Notify(ctx, testEvent(EventCreated))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp down")
	})
}

type recordingBot struct {
	mu    sync.Mutex
	chats []int64
	texts []string
	fail  map[int64]bool
}

func (b *recordingBot) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	chatID := params.ChatID.(int64)
	if b.fail[chatID] {
		return nil, errors.New("chat not found")
	}
	b.chats = append(b.chats, chatID)
	b.texts = append(b.texts, params.Text)
	return &models.Message{}, nil
}

func TestTelegramNotifier(t *testing.T) {
	chatA, chatB := int64(100), int64(200)
	dir := &staticDirectory{specialists: []*model.Specialist{
		{ID: 1, TelegramChatID: &chatA},
		{ID: 2},
		{ID: 3, TelegramChatID: &chatB},
	}}

	t.Run("delivers to linked chats", func(t *testing.T) {
		b := &recordingBot{}
		n := NewTelegramNotifier(b, dir, zap.NewNop())

		require.NoError(t, n.Notify(context.Background(), testEvent(EventCancelled)))
		assert.Equal(t, []int64{chatA, chatB}, b.chats)
		assert.True(t, strings.HasPrefix(b.texts[0], "Reservation Cancelled\n\n"))
	})

	t.Run("keeps going after a failure", func(t *testing.T) {
		b := &recordingBot{fail: map[int64]bool{chatA: true}}
		n := NewTelegramNotifier(b, dir, zap.NewNop())

		err := n.Notify(context.Background(), testEvent(EventCancelled))
		require.Error(t, err)
		assert.Equal(t, []int64{chatB}, b.chats)
	})
}

type funcNotifier func(ctx context.Context, event Event) error

func (f funcNotifier) Notify(ctx context.Context, event Event) error { return f(ctx, event) }

func TestDispatcherFansOutAndSurvivesFailures(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	record := func(name string) Notifier {
		return funcNotifier(func(ctx context.Context, event Event) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			mu.Lock()
			seen = append(seen, name)
			mu.Unlock()
			return nil
		})
	}
	failing := funcNotifier(func(context.Context, Event) error { return errors.New("boom") })
	panicking := funcNotifier(func(context.Context, Event) error { panic("oops") })

	d := NewDispatcher(zap.NewNop(), time.Second, record("a"), failing, panicking, record("b"))
	d.Dispatch(testEvent(EventCreated))
	d.Dispatch(Event{Kind: EventCreated})
	d.Close()

	assert.ElementsMatch(t, []string{"a", "b"}, seen)
}
