package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDecodeActivityMessage(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	body, err := json.Marshal(ActivityMessage{
		Kind:       KindFavoriteAdded,
		UserID:     3,
		MovieID:    7,
		FavoriteID: 11,
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	msg, err := DecodeActivityMessage(body)
	if err != nil {
		t.Fatalf("DecodeActivityMessage: %v", err)
	}
	if msg.Kind != KindFavoriteAdded || msg.UserID != 3 || msg.MovieID != 7 || msg.FavoriteID != 11 {
		t.Errorf("unexpected message: %+v", msg)
	}
	if !msg.OccurredAt.Equal(at) {
		t.Errorf("OccurredAt = %v, want %v", msg.OccurredAt, at)
	}
}

func TestDecodeActivityMessage_Rejects(t *testing.T) {
	for name, body := range map[string]string{
		"not json":     `{"kind":`,
		"unknown kind": `{"kind":"movie.rated","user_id":1}`,
		"missing kind": `{"user_id":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeActivityMessage([]byte(body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPublisher_WithoutConnection(t *testing.T) {
	var nilPublisher *Publisher
	if err := nilPublisher.PublishActivity(context.Background(), ActivityMessage{Kind: KindUserDeleted}); !errors.Is(err, ErrNoConnection) {
		t.Errorf("nil publisher: %v, want ErrNoConnection", err)
	}
	if err := NewPublisher(nil).PublishActivity(context.Background(), ActivityMessage{Kind: KindUserDeleted}); !errors.Is(err, ErrNoConnection) {
		t.Errorf("publisher without connection: %v, want ErrNoConnection", err)
	}
	if err := nilPublisher.Close(); err != nil {
		t.Errorf("Close on nil publisher: %v", err)
	}
}

func TestNewChannel_WithoutConnection(t *testing.T) {
	if _, err := NewChannel(nil); !errors.Is(err, ErrNoConnection) {
		t.Errorf("NewChannel(nil) = %v, want ErrNoConnection", err)
	}
	if err := InitQueues(nil); !errors.Is(err, ErrNoConnection) {
		t.Errorf("InitQueues(nil) = %v, want ErrNoConnection", err)
	}
}
