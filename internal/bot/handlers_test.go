package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MonsieurPatate/daily-tender-bot/config"
	"github.com/MonsieurPatate/daily-tender-bot/internal/apperrors"
	"github.com/MonsieurPatate/daily-tender-bot/internal/db"
	"github.com/MonsieurPatate/daily-tender-bot/internal/tender"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const chat int64 = 42

type fakeAPI struct {
	seq      int
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	stopped  []tgbotapi.StopPollConfig
	sendErr  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.seq++
	f.sent = append(f.sent, c)
	msg := tgbotapi.Message{MessageID: 500 + f.seq}
	if _, ok := c.(tgbotapi.SendPollConfig); ok {
		msg.Poll = &tgbotapi.Poll{ID: "tg-poll"}
	}
	return msg, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) StopPoll(cfg tgbotapi.StopPollConfig) (tgbotapi.Poll, error) {
	f.stopped = append(f.stopped, cfg)
	return tgbotapi.Poll{IsClosed: true}, nil
}

func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) deletedIDs() []int {
	var out []int
	for _, c := range f.requests {
		if d, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			out = append(out, d.MessageID)
		}
	}
	return out
}

// stubTender запоминает вызовы и возвращает заданные ответы.
type stubTender struct {
	now        time.Time
	added      []string
	exempted   map[string]time.Time
	startedAt  time.Time
	start      *tender.StartResult
	startErr   error
	repolled   []string
	candidates []string
	votes      []tender.OptionVotes
	endErr     error
}

func (s *stubTender) InitChat(ctx context.Context, chatID int64) error { return nil }

func (s *stubTender) AddMember(ctx context.Context, chatID int64, fullName string) (*db.Member, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, apperrors.ErrInvalidArgument
	}
	s.added = append(s.added, fullName)
	return &db.Member{ID: uint(len(s.added)), ChatID: chatID, FullName: fullName}, nil
}

func (s *stubTender) RemoveMember(ctx context.Context, chatID int64, identity string) (*db.Member, error) {
	return nil, apperrors.ErrMemberNotFound
}

func (s *stubTender) ListMembers(ctx context.Context, chatID int64) ([]db.Member, error) {
	return nil, nil
}

func (s *stubTender) ExemptMember(ctx context.Context, chatID int64, fullName string, until time.Time) error {
	if s.exempted == nil {
		s.exempted = map[string]time.Time{}
	}
	s.exempted[fullName] = until
	return nil
}

func (s *stubTender) StartTender(ctx context.Context, chatID int64, at time.Time) (*tender.StartResult, error) {
	s.startedAt = at
	return s.start, s.startErr
}

func (s *stubTender) Repoll(ctx context.Context, chatID int64, dropped string) (*tender.RepollResult, error) {
	s.repolled = append(s.repolled, dropped)
	return &tender.RepollResult{Dropped: dropped, Replacement: "Д"}, nil
}

func (s *stubTender) EndPoll(ctx context.Context, chatID int64) (*tender.Resolution, error) {
	if s.endErr != nil {
		return nil, s.endErr
	}
	return &tender.Resolution{ChatID: chatID}, nil
}

func (s *stubTender) CurrentCandidates(ctx context.Context, chatID int64) ([]string, error) {
	return s.candidates, nil
}

func (s *stubTender) HandleVoteCounts(ctx context.Context, pollID string, options []tender.OptionVotes) (int, error) {
	s.votes = append(s.votes, options...)
	return len(options), nil
}

func (s *stubTender) Now() time.Time   { return s.now }
func (s *stubTender) Today() time.Time { return s.now.Truncate(24 * time.Hour) }

func newTestHandler() (*Handler, *fakeAPI, *stubTender) {
	api := &fakeAPI{}
	engine := &stubTender{now: time.Date(2024, 3, 10, 6, 0, 0, 0, time.UTC)}
	h := NewHandler(api, engine, config.TenderConfig{DailyHour: 7}, zap.NewNop())
	return h, api, engine
}

func command(id int, text string) *tgbotapi.Message {
	cmd := strings.SplitN(text, " ", 2)[0]
	return &tgbotapi.Message{
		MessageID: id,
		Chat:      &tgbotapi.Chat{ID: chat},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func TestHandleMessage_AddMemberAndDeleteCommand(t *testing.T) {
	h, api, engine := newTestHandler()

	h.HandleMessage(context.Background(), command(7, "/add Анна Иванова"))

	assert.Equal(t, []string{"Анна Иванова"}, engine.added)
	require.Len(t, api.texts(), 1)
	assert.Contains(t, api.texts()[0], "Анна Иванова")
	assert.Contains(t, api.deletedIDs(), 7)
}

func TestHandleMessage_IgnoresPlainText(t *testing.T) {
	h, api, _ := newTestHandler()
	h.HandleMessage(context.Background(), &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: chat}, Text: "привет"})
	assert.Empty(t, api.sent)
	assert.Empty(t, api.requests)
}

func TestHandleMessage_QuietMessagesReplaceEachOther(t *testing.T) {
	h, api, _ := newTestHandler()
	ctx := context.Background()

	h.HandleMessage(ctx, command(1, "/help"))
	firstQuiet := 500 + api.seq
	h.HandleMessage(ctx, command(2, "/unknown"))

	assert.Contains(t, api.deletedIDs(), firstQuiet)
	texts := api.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "/help")
}

func TestHandleMessage_ErrorsAreReported(t *testing.T) {
	h, api, _ := newTestHandler()

	h.HandleMessage(context.Background(), command(3, "/delete Никто"))
	texts := api.texts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], apperrors.ErrMemberNotFound.Message)

	h.HandleMessage(context.Background(), command(4, "/add"))
	assert.Contains(t, api.texts()[1], apperrors.ErrInvalidArgument.Message)
}

func TestHandleMessage_Poll(t *testing.T) {
	h, api, engine := newTestHandler()
	engine.start = &tender.StartResult{Candidates: []string{"А", "Б"}, PollID: "p"}

	h.HandleMessage(context.Background(), command(5, "/poll"))
	assert.Equal(t, time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC), engine.startedAt)
	texts := api.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[0], "07:00")
	assert.Contains(t, texts[1], "07:00 UTC")

	engine.startErr = apperrors.ErrAlreadyOrganizedToday
	h.HandleMessage(context.Background(), command(6, "/poll 09:30"))
	assert.Equal(t, time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC), engine.startedAt)
	assert.Contains(t, api.texts()[2], apperrors.ErrAlreadyOrganizedToday.Message)
}

func TestHandleMessage_Skip(t *testing.T) {
	h, api, engine := newTestHandler()

	h.HandleMessage(context.Background(), command(8, "/skip Анна Иванова 20.03.2024"))
	until, ok := engine.exempted["Анна Иванова"]
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), until)
	assert.Contains(t, api.texts()[0], "20.03.2024")
}

func TestRepollKeyboardFlow(t *testing.T) {
	h, api, engine := newTestHandler()
	engine.candidates = []string{"А", "Б", "В"}
	ctx := context.Background()

	h.HandleMessage(ctx, command(9, "/repoll"))
	require.Len(t, api.sent, 1)
	keyboardMsgID := 500 + api.seq
	kb, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	markup, ok := kb.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 3)

	data := *markup.InlineKeyboard[1][0].CallbackData
	require.True(t, strings.HasPrefix(data, repollPrefix))
	assert.LessOrEqual(t, len(data), 64)

	cq := &tgbotapi.CallbackQuery{ID: "cb", Data: data, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chat}}}
	h.HandleCallbackQuery(ctx, cq)
	assert.Equal(t, []string{"Б"}, engine.repolled)
	assert.Contains(t, api.deletedIDs(), keyboardMsgID)

	// кнопки использованной клавиатуры больше не работают
	other := *markup.InlineKeyboard[0][0].CallbackData
	h.HandleCallbackQuery(ctx, &tgbotapi.CallbackQuery{ID: "cb2", Data: other, Message: cq.Message})
	assert.Len(t, engine.repolled, 1)
}

func TestRepollByName(t *testing.T) {
	h, api, engine := newTestHandler()
	h.HandleMessage(context.Background(), command(10, "/repoll Б"))
	assert.Equal(t, []string{"Б"}, engine.repolled)
	assert.Contains(t, api.texts()[0], "Б")
}

func TestEndPollButton(t *testing.T) {
	h, api, engine := newTestHandler()
	cq := &tgbotapi.CallbackQuery{ID: "cb", Data: callbackEndPoll, Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chat}}}

	h.HandleCallbackQuery(context.Background(), cq)
	require.Len(t, api.requests, 1)
	answer, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.False(t, answer.ShowAlert)

	engine.endErr = apperrors.ErrNoRelevantPoll
	h.HandleCallbackQuery(context.Background(), cq)
	answer, ok = api.requests[1].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.True(t, answer.ShowAlert)
	assert.Equal(t, apperrors.ErrNoRelevantPoll.Message, answer.Text)
}

func TestHandlePoll_ForwardsVoteCounts(t *testing.T) {
	h, _, engine := newTestHandler()

	h.HandlePoll(context.Background(), &tgbotapi.Poll{
		ID:      "tg-poll",
		Options: []tgbotapi.PollOption{{Text: "А", VoterCount: 2}, {Text: "Б", VoterCount: 0}},
	})
	assert.Equal(t, []tender.OptionVotes{{Text: "А", VoterCount: 2}, {Text: "Б", VoterCount: 0}}, engine.votes)

	h.HandlePoll(context.Background(), &tgbotapi.Poll{ID: "tg-poll", IsClosed: true, Options: []tgbotapi.PollOption{{Text: "А", VoterCount: 3}}})
	assert.Len(t, engine.votes, 2)
}

func TestTelegramTransport(t *testing.T) {
	api := &fakeAPI{}
	tr := NewTelegramTransport(api, zap.NewNop())

	ref, err := tr.SendPoll(chat, "Кто?", []string{"А", "Б"})
	require.NoError(t, err)
	assert.Equal(t, "tg-poll", ref.PollID)
	assert.Equal(t, 501, ref.MessageID)

	cfg, ok := api.sent[0].(tgbotapi.SendPollConfig)
	require.True(t, ok)
	assert.False(t, cfg.IsAnonymous)
	assert.False(t, cfg.AllowsMultipleAnswers)
	assert.Equal(t, []string{"А", "Б"}, cfg.Options)

	require.NoError(t, tr.StopPoll(chat, ref.MessageID))
	require.Len(t, api.stopped, 1)
	assert.Equal(t, ref.MessageID, api.stopped[0].MessageID)

	require.NoError(t, tr.DeleteMessage(chat, 77))
	assert.Equal(t, []int{77}, api.deletedIDs())

	api.sendErr = errors.New("flood")
	_, err = tr.SendPoll(chat, "Кто?", []string{"А", "Б"})
	assert.Error(t, err)
	assert.Error(t, tr.SendMessage(chat, "текст"))
}
