package notify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
)

func TestMailNotifier_SendIsAsync(t *testing.T) {
	n := NewMailNotifier(config.MailConfig{}, logger.Get(logger.ErrorLevel, ""))

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 1)
	n.send = func(subject, body string) error {
		mu.Lock()
		got = append(got, subject+"|"+body)
		mu.Unlock()
		done <- struct{}{}
		return nil
	}

	n.Send("subj", "body")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("send never ran")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "subj|body" {
		t.Fatalf("unexpected send: %v", got)
	}
}

func TestMailNotifier_FailureDoesNotPanic(t *testing.T) {
	n := NewMailNotifier(config.MailConfig{}, logger.Get(logger.ErrorLevel, ""))
	done := make(chan struct{}, 1)
	n.send = func(subject, body string) error {
		defer func() { done <- struct{}{} }()
		return errors.New("smtp refused")
	}

	n.Send("subj", "body")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("send never ran")
	}
}
