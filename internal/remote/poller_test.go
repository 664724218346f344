package remote

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"gamepilot/internal/logger"
)

type queued struct {
	id     int
	action string
}

type fakeQueue struct {
	pending  []queued
	executed map[int]string
	statuses []string
	err      error
}

func (q *fakeQueue) GetLatestUnexecutedAction(context.Context) (string, int, error) {
	if q.err != nil {
		return "", 0, q.err
	}
	for _, a := range q.pending {
		if _, done := q.executed[a.id]; !done {
			return a.action, a.id, nil
		}
	}
	return "", 0, nil
}

func (q *fakeQueue) MarkActionAsExecuted(_ context.Context, id int, result string) error {
	q.executed[id] = result
	return nil
}

func (q *fakeQueue) UpdateStatus(_ context.Context, status string) error {
	q.statuses = append(q.statuses, status)
	return nil
}

type fakeRunner struct {
	ok  map[string]bool
	ran []string
}

func (r *fakeRunner) Process(_ context.Context, text string) bool {
	r.ran = append(r.ran, text)
	return r.ok[text]
}

func newPoller(q Queue, r Runner) *Poller {
	return NewPoller(q, r, time.Millisecond, logger.NewWriterLogger(&bytes.Buffer{}))
}

func TestPollExecutesInOrder(t *testing.T) {
	q := &fakeQueue{
		pending:  []queued{{1, "hunt chickens"}, {2, "fly"}, {3, "quit"}},
		executed: map[int]string{},
	}
	r := &fakeRunner{ok: map[string]bool{"hunt chickens": true}}
	p := newPoller(q, r)

	for i := 0; i < 3; i++ {
		if got, err := p.Poll(context.Background()); err != nil || !got {
			t.Fatalf("опрос %d: %v %v", i+1, got, err)
		}
	}
	if got, _ := p.Poll(context.Background()); got {
		t.Error("очередь должна быть пуста")
	}

	want := map[int]string{1: ResultOK, 2: ResultFailed, 3: ResultIgnored}
	for id, res := range want {
		if q.executed[id] != res {
			t.Errorf("действие %d: ожидалось %s, получено %s", id, res, q.executed[id])
		}
	}
	if len(r.ran) != 2 {
		t.Errorf("quit не должен доходить до процессора: %v", r.ran)
	}
	if q.statuses[0] != "hunt chickens: ok" {
		t.Errorf("неожиданный статус %q", q.statuses[0])
	}
}

func TestPollQueueError(t *testing.T) {
	boom := errors.New("mysql down")
	p := newPoller(&fakeQueue{err: boom, executed: map[int]string{}}, &fakeRunner{})
	if _, err := p.Poll(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("ожидалась ошибка очереди, получено %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		newPoller(&fakeQueue{executed: map[int]string{}}, &fakeRunner{}).Run(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run не завершился после отмены")
	}
}
