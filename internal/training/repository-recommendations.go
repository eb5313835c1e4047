package training

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// UpsertRecommendation keeps one row per user and exercise. The latest write wins.
func (r *SQLiteStore) UpsertRecommendation(ctx context.Context, rec Recommendation) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO progression_recommendations (
			user_id, exercise_id, recommended_weight, recommended_reps, recommendation_type, reason,
			based_on_sessions, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, exercise_id) DO UPDATE SET
			recommended_weight = excluded.recommended_weight,
			recommended_reps = excluded.recommended_reps,
			recommendation_type = excluded.recommendation_type,
			reason = excluded.reason,
			based_on_sessions = excluded.based_on_sessions,
			created_at = excluded.created_at`,
		rec.UserID,
		rec.ExerciseID,
		rec.RecommendedWeight,
		rec.RecommendedReps,
		string(rec.Type),
		rec.Reason,
		rec.BasedOnSessions,
		formatTimestamp(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert progression recommendation: %w", err)
	}
	return nil
}

func (r *SQLiteStore) ListRecommendations(
	ctx context.Context,
	userID int64,
	exerciseIDs []int64,
) (_ []Recommendation, err error) {
	// The id filter is passed as a JSON array so that the statement has a fixed number of parameters.
	var filter []byte
	if len(exerciseIDs) > 0 {
		if filter, err = json.Marshal(exerciseIDs); err != nil {
			return nil, fmt.Errorf("marshal exercise ids: %w", err)
		}
	}
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT pr.user_id, pr.exercise_id, e.name, pr.recommended_weight, pr.recommended_reps,
		       pr.recommendation_type, pr.reason, pr.based_on_sessions, pr.created_at
		FROM progression_recommendations pr
		JOIN exercises e ON e.id = pr.exercise_id
		WHERE pr.user_id = :user_id
		  AND (:filter IS NULL OR pr.exercise_id IN (SELECT value FROM JSON_EACH(:filter)))
		ORDER BY pr.exercise_id`,
		sql.Named("user_id", userID), sql.Named("filter", nullableString(filter)))
	if err != nil {
		return nil, fmt.Errorf("query progression recommendations: %w", err)
	}
	defer closeRows(rows, &err)

	var recs []Recommendation
	for rows.Next() {
		var (
			rec       Recommendation
			createdAt string
		)
		if err = rows.Scan(&rec.UserID, &rec.ExerciseID, &rec.ExerciseName, &rec.RecommendedWeight,
			&rec.RecommendedReps, &rec.Type, &rec.Reason, &rec.BasedOnSessions, &createdAt); err != nil {
			return nil, fmt.Errorf("scan progression recommendation: %w", err)
		}
		if rec.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return recs, nil
}

func nullableString(b []byte) sql.NullString {
	return sql.NullString{String: string(b), Valid: b != nil}
}
