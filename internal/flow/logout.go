package flow

import (
	"context"

	"github.com/prefeitura-rio/app-login/internal/events"
	"github.com/prefeitura-rio/app-login/internal/logging"
	"github.com/prefeitura-rio/app-login/internal/models"
	"github.com/prefeitura-rio/app-login/internal/session"
	"go.uber.org/zap"
)

// Logout removes the stored identity and broadcasts a logout event.
func Logout(ctx context.Context, store *session.Store, pub events.Publisher, deviceID string) error {
	identity, err := store.LoadIdentity(ctx)
	if err != nil {
		return err
	}
	if identity == nil {
		return models.ErrIdentityNotFound
	}
	if err := store.ClearIdentity(ctx); err != nil {
		return err
	}

	logging.Logger.Info("logout", zap.String("device_id", deviceID), zap.String("user_id", identity.ID))
	if pub != nil {
		pub.Publish(ctx, events.LogoutOccurred(deviceID, identity.ID))
	}
	return nil
}
