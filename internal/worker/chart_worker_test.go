package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/amqp"
)

type fakeRenderer struct {
	users    []string
	ok       bool
	err      error
	deadline bool
}

func (f *fakeRenderer) RenderChart(ctx context.Context, userID string) (string, bool, error) {
	f.users = append(f.users, userID)
	_, f.deadline = ctx.Deadline()
	return "/charts/chart_" + userID + ".png", f.ok, f.err
}

func TestHandleChartRender(t *testing.T) {
	tests := []struct {
		name    string
		ok      bool
		err     error
		wantErr bool
	}{
		{name: "rendered", ok: true},
		{name: "nothing to draw", ok: false},
		{name: "render failure", err: errors.New("disk full"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRenderer{ok: tt.ok, err: tt.err}
			w := NewChartWorker(r, time.Minute)

			err := w.HandleChartRender(context.Background(), amqp.NewChartRenderMessage("alice"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, tt.err) {
				t.Errorf("error should wrap the render failure: %v", err)
			}
			if len(r.users) != 1 || r.users[0] != "alice" {
				t.Errorf("renderer called with %v", r.users)
			}
			if !r.deadline {
				t.Error("render should run under the worker timeout")
			}
		})
	}
}

func TestHandleChartRenderNoTimeout(t *testing.T) {
	r := &fakeRenderer{ok: true}
	if err := NewChartWorker(r, 0).HandleChartRender(context.Background(), amqp.NewChartRenderMessage("bob")); err != nil {
		t.Fatal(err)
	}
	if r.deadline {
		t.Error("zero timeout should not set a deadline")
	}
}
