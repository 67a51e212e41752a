package ports

import (
	"context"

	"skycourier/internal/core/domain/model/mission"
)

// MissionPublisher hands a mission intent to the ground control bridge. A
// returned error means the bridge rejected the intent and the order must not
// advance to MissionSubmitted.
type MissionPublisher interface {
	PublishMissionIntent(ctx context.Context, intent mission.Intent) error
}
