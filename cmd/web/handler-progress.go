package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/liftcoach/internal/contexthelpers"
	"github.com/myrjola/liftcoach/internal/training"
)

type achievementResponse struct {
	ID         uuid.UUID                 `json:"id"`
	Type       string                    `json:"type"`
	Value      training.AchievementValue `json:"value"`
	AchievedAt time.Time                 `json:"achieved_at"`
}

type muscleVolumeResponse struct {
	MuscleGroup string `json:"muscle_group"`
	Sets        int    `json:"sets"`
	Target      int    `json:"target"`
}

func (app *application) achievementsGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	achievements, err := app.coach.Achievements(r.Context(), userID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	resp := make([]achievementResponse, 0, len(achievements))
	for _, a := range achievements {
		resp = append(resp, achievementResponse{
			ID:         a.ID,
			Type:       string(a.Type),
			Value:      a.Value,
			AchievedAt: a.AchievedAt,
		})
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

func (app *application) streakGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	streak, err := app.coach.ComputeStreak(r.Context(), userID)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newStreakResponse(streak))
}

// volumeGET reports the last week's sets per muscle group against the target of the goal query parameter.
func (app *application) volumeGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	goal := training.Goal(r.URL.Query().Get("goal"))
	volumes, err := app.coach.WeeklyVolume(r.Context(), userID, goal)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	resp := make([]muscleVolumeResponse, 0, len(volumes))
	for _, v := range volumes {
		resp = append(resp, muscleVolumeResponse{MuscleGroup: v.MuscleGroup, Sets: v.Sets, Target: v.Target})
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}
