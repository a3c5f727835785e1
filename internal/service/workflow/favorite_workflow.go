package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qs-lzh/movie-favorites/internal/model"
	"github.com/qs-lzh/movie-favorites/internal/mq"
	"github.com/qs-lzh/movie-favorites/internal/service/domain"
)

type ActivityPublisher interface {
	PublishActivity(ctx context.Context, msg mq.ActivityMessage) error
}

type ActivityRecorder interface {
	RecordActivity(kind string)
}

// FavoriteWorkflow runs favorite and account-removal writes and announces
// them once committed. Announcing is best-effort: a failed publish is logged
// and never undoes or fails the write.
type FavoriteWorkflow struct {
	favoriteService domain.FavoriteService
	userService     domain.UserService
	publisher       ActivityPublisher
	recorder        ActivityRecorder
	logger          *zap.Logger
	now             func() time.Time
}

// NewFavoriteWorkflow accepts a nil publisher or recorder when messaging or
// metrics are not configured.
func NewFavoriteWorkflow(favoriteService domain.FavoriteService, userService domain.UserService,
	publisher ActivityPublisher, recorder ActivityRecorder, logger *zap.Logger) *FavoriteWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoriteWorkflow{
		favoriteService: favoriteService,
		userService:     userService,
		publisher:       publisher,
		recorder:        recorder,
		logger:          logger,
		now:             time.Now,
	}
}

func (w *FavoriteWorkflow) AddFavorite(ctx context.Context, userID, movieID uint) (*model.Favorite, error) {
	favorite, err := w.favoriteService.AddFavorite(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	w.announce(ctx, mq.ActivityMessage{
		Kind:       mq.KindFavoriteAdded,
		UserID:     favorite.UserID,
		MovieID:    favorite.MovieID,
		FavoriteID: favorite.ID,
	})
	return favorite, nil
}

func (w *FavoriteWorkflow) RemoveFavorite(ctx context.Context, userID, movieID uint) error {
	favorite, err := w.favoriteService.RemoveFavorite(ctx, userID, movieID)
	if err != nil {
		return err
	}
	w.announceRemoval(ctx, favorite)
	return nil
}

func (w *FavoriteWorkflow) RemoveFavoriteByID(ctx context.Context, id uint) error {
	favorite, err := w.favoriteService.RemoveFavoriteByID(ctx, id)
	if err != nil {
		return err
	}
	w.announceRemoval(ctx, favorite)
	return nil
}

func (w *FavoriteWorkflow) DeleteUser(ctx context.Context, userID uint) (int, error) {
	removed, err := w.userService.DeleteUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	w.announce(ctx, mq.ActivityMessage{
		Kind:             mq.KindUserDeleted,
		UserID:           userID,
		RemovedFavorites: removed,
	})
	return removed, nil
}

func (w *FavoriteWorkflow) announceRemoval(ctx context.Context, favorite *model.Favorite) {
	w.announce(ctx, mq.ActivityMessage{
		Kind:       mq.KindFavoriteRemoved,
		UserID:     favorite.UserID,
		MovieID:    favorite.MovieID,
		FavoriteID: favorite.ID,
	})
}

func (w *FavoriteWorkflow) announce(ctx context.Context, msg mq.ActivityMessage) {
	msg.OccurredAt = w.now().UTC()
	if w.recorder != nil {
		w.recorder.RecordActivity(string(msg.Kind))
	}
	if w.publisher == nil {
		return
	}
	// the request may already be finishing; publishing must not depend on it
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := w.publisher.PublishActivity(pubCtx, msg); err != nil {
		w.logger.Warn("failed to publish activity",
			zap.String("kind", string(msg.Kind)),
			zap.Uint("user_id", msg.UserID),
			zap.Error(err),
		)
	}
}
