package migrations

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Run applies every migration in order. Each one is safe to repeat.
func Run(ctx context.Context, db *mongo.Database) error {
	if err := CreateIndexes(ctx, db); err != nil {
		return err
	}
	if _, err := BackfillDoctorActive(ctx, db); err != nil {
		return err
	}
	if _, err := BackfillReminderPreferences(ctx, db); err != nil {
		return err
	}
	return nil
}
