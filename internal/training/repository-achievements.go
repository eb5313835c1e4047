package training

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// InsertAchievement appends an achievement unless its id is already stored. The value is stored as JSON.
func (r *SQLiteStore) InsertAchievement(ctx context.Context, a Achievement) error {
	value, err := json.Marshal(a.Value)
	if err != nil {
		return fmt.Errorf("marshal achievement value: %w", err)
	}
	if _, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO user_achievements (id, user_id, achievement_type, achievement_value, achieved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		a.ID.String(), a.UserID, string(a.Type), string(value), formatTimestamp(a.AchievedAt)); err != nil {
		return fmt.Errorf("insert achievement: %w", err)
	}
	return nil
}

func (r *SQLiteStore) ListAchievements(ctx context.Context, userID int64) (_ []Achievement, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, user_id, achievement_type, achievement_value, achieved_at
		FROM user_achievements
		WHERE user_id = ?
		ORDER BY achieved_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer closeRows(rows, &err)

	var achievements []Achievement
	for rows.Next() {
		var (
			a          Achievement
			id, value  string
			achievedAt string
		)
		if err = rows.Scan(&id, &a.UserID, &a.Type, &value, &achievedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		if a.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse achievement id: %w", err)
		}
		if err = json.Unmarshal([]byte(value), &a.Value); err != nil {
			return nil, fmt.Errorf("unmarshal achievement value: %w", err)
		}
		if a.AchievedAt, err = parseTimestamp(achievedAt); err != nil {
			return nil, err
		}
		achievements = append(achievements, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return achievements, nil
}
