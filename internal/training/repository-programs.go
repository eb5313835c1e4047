package training

import (
	"context"
	"fmt"
)

// ListTrainingPrograms loads the catalogue with three queries and assembles tags and workouts in memory.
func (r *SQLiteStore) ListTrainingPrograms(ctx context.Context) (_ []TrainingProgram, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT slug, name, category, difficulty, min_days, max_days, description_markdown
		FROM training_programs
		ORDER BY category, slug`)
	if err != nil {
		return nil, fmt.Errorf("query training programs: %w", err)
	}
	defer closeRows(rows, &err)

	var (
		programs []TrainingProgram
		bySlug   = make(map[string]int)
	)
	for rows.Next() {
		var p TrainingProgram
		if err = rows.Scan(&p.Slug, &p.Name, &p.Category, &p.Difficulty, &p.MinDays, &p.MaxDays,
			&p.DescriptionMarkdown); err != nil {
			return nil, fmt.Errorf("scan training program: %w", err)
		}
		bySlug[p.Slug] = len(programs)
		programs = append(programs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if err = r.attachTags(ctx, programs, bySlug); err != nil {
		return nil, err
	}
	if err = r.attachWorkouts(ctx, programs, bySlug); err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *SQLiteStore) attachTags(ctx context.Context, programs []TrainingProgram, bySlug map[string]int) (err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx,
		`SELECT program_slug, tag FROM training_program_tags ORDER BY program_slug, tag`)
	if err != nil {
		return fmt.Errorf("query program tags: %w", err)
	}
	defer closeRows(rows, &err)

	for rows.Next() {
		var slug, tag string
		if err = rows.Scan(&slug, &tag); err != nil {
			return fmt.Errorf("scan program tag: %w", err)
		}
		if i, ok := bySlug[slug]; ok {
			programs[i].Tags = append(programs[i].Tags, tag)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	return nil
}

func (r *SQLiteStore) attachWorkouts(ctx context.Context, programs []TrainingProgram, bySlug map[string]int) (err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx,
		`SELECT program_slug, position, name, template FROM program_workouts ORDER BY program_slug, position`)
	if err != nil {
		return fmt.Errorf("query program workouts: %w", err)
	}
	defer closeRows(rows, &err)

	for rows.Next() {
		var (
			slug string
			w    ProgramWorkout
		)
		if err = rows.Scan(&slug, &w.Position, &w.Name, &w.Template); err != nil {
			return fmt.Errorf("scan program workout: %w", err)
		}
		if i, ok := bySlug[slug]; ok {
			programs[i].Workouts = append(programs[i].Workouts, w)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}
	return nil
}
