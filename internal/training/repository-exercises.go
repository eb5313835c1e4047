package training

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/myrjola/liftcoach/internal/errors"
)

// FindExerciseID looks up an exercise by its unique name.
func (r *SQLiteStore) FindExerciseID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.ReadOnly.QueryRowContext(ctx, "SELECT id FROM exercises WHERE name = ?", name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("exercise %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("query exercise: %w", err)
	}
	return id, nil
}

func (r *SQLiteStore) ListExercises(ctx context.Context) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT e.id, e.name, e.muscle_group, ee.equipment
		FROM exercises e
		LEFT JOIN exercise_equipment ee ON ee.exercise_id = e.id
		ORDER BY e.id, ee.equipment`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer closeRows(rows, &err)

	var exercises []Exercise
	for rows.Next() {
		var (
			ex        Exercise
			equipment sql.NullString
		)
		if err = rows.Scan(&ex.ID, &ex.Name, &ex.MuscleGroup, &equipment); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		if n := len(exercises); n == 0 || exercises[n-1].ID != ex.ID {
			exercises = append(exercises, ex)
		}
		if equipment.Valid {
			last := &exercises[len(exercises)-1]
			last.Equipment = append(last.Equipment, Equipment(equipment.String))
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return exercises, nil
}
