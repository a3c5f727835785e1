package mq

import (
	"encoding/json"
	"fmt"
	"time"
)

// immediate queue carrying user activity (favorites marked/unmarked, accounts removed)
// consumed by the activity workflow; rejected deliveries are dead-lettered
const (
	ActivityQueue          = "movies.activity.immediate"
	ActivityDeadExchange   = "movies.activity.dlx"
	ActivityDeadQueue      = "movies.activity.dead"
	ActivityDeadRoutingKey = "activity.rejected"
)

type ActivityKind string

const (
	KindFavoriteAdded   ActivityKind = "favorite.added"
	KindFavoriteRemoved ActivityKind = "favorite.removed"
	KindUserDeleted     ActivityKind = "user.deleted"
)

func (k ActivityKind) Valid() bool {
	switch k {
	case KindFavoriteAdded, KindFavoriteRemoved, KindUserDeleted:
		return true
	}
	return false
}

type ActivityMessage struct {
	Kind             ActivityKind `json:"kind"`
	UserID           uint         `json:"user_id"`
	MovieID          uint         `json:"movie_id,omitempty"`
	FavoriteID       uint         `json:"favorite_id,omitempty"`
	RemovedFavorites int          `json:"removed_favorites,omitempty"`
	OccurredAt       time.Time    `json:"occurred_at"`
}

func DecodeActivityMessage(body []byte) (ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return ActivityMessage{}, fmt.Errorf("failed to unmarshal activity message: %w", err)
	}
	if !msg.Kind.Valid() {
		return ActivityMessage{}, fmt.Errorf("unknown activity kind %q", msg.Kind)
	}
	return msg, nil
}
