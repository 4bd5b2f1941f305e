package sink

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/session"
)

func sampleRecord() model.Record {
	answer := 2
	return model.Record{
		ID:           "rec-1",
		UserID:       "learner",
		Difficulty:   model.Medium,
		TableWords:   []string{"学习", "工作"},
		Accuracy:     50,
		CorrectCount: 5,
		TotalTime:    42,
		AvgTime:      4.2,
		Details: []model.Detail{{
			QuestionIndex: 0,
			QuestionWords: []string{"学习", "读书", "工作", "生活", "快乐"},
			UserAnswer:    &answer,
			CorrectAnswer: 2,
			IsCorrect:     true,
			TimeSpent:     3,
		}},
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

type sinkFunc func(ctx context.Context, rec model.Record) error

func (f sinkFunc) SaveRecord(ctx context.Context, rec model.Record) error {
	return f(ctx, rec)
}

func TestHTTPPostsJSON(t *testing.T) {
	var got map[string]any
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/training/record" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("invalid json body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	h, err := NewHTTP(srv.URL+"/api/training/record", nil, time.Second)
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}
	if err := h.SaveRecord(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("unexpected content type %q", contentType)
	}
	if got["userId"] != "learner" || got["difficulty"] != "medium" || got["correctCount"] != float64(5) {
		t.Fatalf("unexpected payload: %v", got)
	}
	details, ok := got["details"].([]any)
	if !ok || len(details) != 1 {
		t.Fatalf("unexpected details payload: %v", got["details"])
	}
	if d := details[0].(map[string]any); d["userAnswer"] != float64(2) || d["timeSpent"] != float64(3) {
		t.Fatalf("unexpected detail payload: %v", d)
	}
}

func TestHTTPNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	h, err := NewHTTP(srv.URL, srv.Client(), 0)
	if err != nil {
		t.Fatalf("NewHTTP failed: %v", err)
	}
	err = h.SaveRecord(context.Background(), sampleRecord())
	if err == nil {
		t.Fatalf("expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "database unavailable") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}

func TestHTTPRequiresURL(t *testing.T) {
	if _, err := NewHTTP("  ", nil, 0); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

type fakePublisher struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange = exchange
	f.key = key
	f.msg = msg
	return f.err
}

func TestAMQPPublishesPersistentJSON(t *testing.T) {
	pub := &fakePublisher{}
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	a := &AMQP{queue: "records", pub: pub, now: func() time.Time { return now }}
	if err := a.SaveRecord(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if pub.exchange != "" || pub.key != "records" {
		t.Fatalf("unexpected routing: %q %q", pub.exchange, pub.key)
	}
	if pub.msg.DeliveryMode != amqp.Persistent || pub.msg.ContentType != "application/json" || pub.msg.MessageId != "rec-1" {
		t.Fatalf("unexpected publishing: %+v", pub.msg)
	}
	var rec model.Record
	if err := json.Unmarshal(pub.msg.Body, &rec); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if rec.ID != "rec-1" || len(rec.Details) != 1 || *rec.Details[0].UserAnswer != 2 {
		t.Fatalf("unexpected decoded record: %+v", rec)
	}
}

func TestAMQPPublishError(t *testing.T) {
	pub := &fakePublisher{err: amqp.ErrClosed}
	a := &AMQP{queue: "records", pub: pub, now: time.Now}
	err := a.SaveRecord(context.Background(), sampleRecord())
	if !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("expected wrapped ErrClosed, got %v", err)
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	errA := errors.New("sink a down")
	errB := errors.New("sink b down")
	calls := 0
	ok := sinkFunc(func(context.Context, model.Record) error {
		calls++
		return nil
	})
	m := Multi{
		sinkFunc(func(context.Context, model.Record) error { return errA }),
		ok,
		nil,
		sinkFunc(func(context.Context, model.Record) error { return errB }),
	}
	err := m.SaveRecord(context.Background(), sampleRecord())
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both errors, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected healthy sink to run once, got %d", calls)
	}
	if err := (Multi{ok, Discard{}}).SaveRecord(context.Background(), sampleRecord()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

var _ session.Sink = sinkFunc(nil)
