package main

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/myrjola/liftcoach/internal/contexthelpers"
	"github.com/myrjola/liftcoach/internal/errors"
	"github.com/myrjola/liftcoach/internal/i18n"
	"github.com/myrjola/liftcoach/internal/training"
)

type matchProgramsRequest struct {
	Goals       []string `json:"goals"`
	Experience  string   `json:"experience"`
	DaysPerWeek int      `json:"days_per_week"`
}

type generateProgramRequest struct {
	Goal        string   `json:"goal"`
	DaysPerWeek int      `json:"days_per_week"`
	Equipment   []string `json:"equipment"`
}

type plannedExerciseResponse struct {
	ExerciseID   int64  `json:"exercise_id"`
	ExerciseName string `json:"exercise_name"`
	Sets         int    `json:"sets"`
	Reps         string `json:"reps"`
	RestSeconds  int    `json:"rest_seconds"`
}

type substitutionResponse struct {
	Requested string `json:"requested"`
	Chosen    string `json:"chosen"`
}

type generatedWorkoutResponse struct {
	WorkoutID     int64                     `json:"workout_id"`
	Name          string                    `json:"name"`
	Exercises     []plannedExerciseResponse `json:"exercises"`
	Substitutions []substitutionResponse    `json:"substitutions"`
}

type programWorkoutResponse struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Template string `json:"template"`
}

type programResponse struct {
	Slug            string                   `json:"slug"`
	Name            string                   `json:"name"`
	Category        string                   `json:"category"`
	Tags            []string                 `json:"tags"`
	Difficulty      string                   `json:"difficulty"`
	MinDays         int                      `json:"min_days"`
	MaxDays         int                      `json:"max_days"`
	Workouts        []programWorkoutResponse `json:"workouts"`
	DescriptionHTML string                   `json:"description_html,omitempty"`
}

type scoredProgramResponse struct {
	Program      programResponse `json:"program"`
	Score        int             `json:"score"`
	MatchReasons []string        `json:"match_reasons"`
}

type programMatchesResponse struct {
	TopPicks     []scoredProgramResponse `json:"top_picks"`
	OtherOptions []scoredProgramResponse `json:"other_options"`
}

type programTemplateData struct {
	Lang        i18n.Language
	Program     training.TrainingProgram
	Days        string
	Description template.HTML
}

func newProgramResponse(p training.TrainingProgram) programResponse {
	workouts := make([]programWorkoutResponse, 0, len(p.Workouts))
	for _, w := range p.Workouts {
		workouts = append(workouts, programWorkoutResponse{Position: w.Position, Name: w.Name, Template: w.Template})
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return programResponse{
		Slug:            p.Slug,
		Name:            p.Name,
		Category:        string(p.Category),
		Tags:            tags,
		Difficulty:      string(p.Difficulty),
		MinDays:         p.MinDays,
		MaxDays:         p.MaxDays,
		Workouts:        workouts,
		DescriptionHTML: "",
	}
}

func newScoredProgramResponses(scored []training.ScoredProgram) []scoredProgramResponse {
	resp := make([]scoredProgramResponse, 0, len(scored))
	for _, sp := range scored {
		reasons := sp.MatchReasons
		if reasons == nil {
			reasons = []string{}
		}
		resp = append(resp, scoredProgramResponse{
			Program:      newProgramResponse(sp.Program),
			Score:        sp.Score,
			MatchReasons: reasons,
		})
	}
	return resp
}

// renderDescription converts the program's Markdown description to HTML. The catalogue is trusted reference data.
func (app *application) renderDescription(p training.TrainingProgram) (template.HTML, error) {
	var buf bytes.Buffer
	if err := app.markdown.Convert([]byte(p.DescriptionMarkdown), &buf); err != nil {
		return "", fmt.Errorf("convert description of %s: %w", p.Slug, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // goldmark escapes raw HTML by default.
}

func (app *application) programsMatchPOST(w http.ResponseWriter, r *http.Request) {
	var req matchProgramsRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	goals := make([]training.Goal, 0, len(req.Goals))
	for _, g := range req.Goals {
		goals = append(goals, training.Goal(g))
	}
	matches, err := app.coach.MatchPrograms(r.Context(), training.MatchRequest{
		Goals:       goals,
		Experience:  training.Experience(req.Experience),
		DaysPerWeek: req.DaysPerWeek,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, programMatchesResponse{
		TopPicks:     newScoredProgramResponses(matches.TopPicks),
		OtherOptions: newScoredProgramResponses(matches.OtherOptions),
	})
}

func (app *application) programsGET(w http.ResponseWriter, r *http.Request) {
	programs, err := app.coach.Programs(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	resp := make([]programResponse, 0, len(programs))
	for _, p := range programs {
		resp = append(resp, newProgramResponse(p))
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

func (app *application) programGET(w http.ResponseWriter, r *http.Request) {
	program, err := app.coach.Program(r.Context(), r.PathValue("slug"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	description, err := app.renderDescription(program)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	resp := newProgramResponse(program)
	resp.DescriptionHTML = string(description)
	app.writeJSON(w, r, http.StatusOK, resp)
}

// programPageGET renders a program as an HTML page.
func (app *application) programPageGET(w http.ResponseWriter, r *http.Request) {
	program, err := app.coach.Program(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, training.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	description, err := app.renderDescription(program)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	days := strconv.Itoa(program.MinDays)
	if program.MaxDays != program.MinDays {
		days += "-" + strconv.Itoa(program.MaxDays)
	}
	lang := i18n.FromAcceptLanguage(r.Header.Get("Accept-Language"))
	w.Header().Set("Content-Language", string(lang))
	w.Header().Add("Vary", "Accept-Language")
	app.render(w, r, http.StatusOK, programTemplateData{
		Lang:        lang,
		Program:     program,
		Days:        days,
		Description: description,
	})
}

func newGeneratedWorkoutResponses(workouts []training.GeneratedWorkout) []generatedWorkoutResponse {
	resp := make([]generatedWorkoutResponse, 0, len(workouts))
	for _, w := range workouts {
		exercises := make([]plannedExerciseResponse, 0, len(w.Exercises))
		for _, we := range w.Exercises {
			exercises = append(exercises, plannedExerciseResponse{
				ExerciseID:   we.ExerciseID,
				ExerciseName: we.ExerciseName,
				Sets:         we.Sets,
				Reps:         we.Reps,
				RestSeconds:  we.RestSeconds,
			})
		}
		substitutions := make([]substitutionResponse, 0, len(w.Substitutions))
		for _, sub := range w.Substitutions {
			substitutions = append(substitutions, substitutionResponse{Requested: sub.Requested, Chosen: sub.Chosen})
		}
		resp = append(resp, generatedWorkoutResponse{
			WorkoutID:     w.ID,
			Name:          w.Name,
			Exercises:     exercises,
			Substitutions: substitutions,
		})
	}
	return resp
}

func (app *application) programsGeneratePOST(w http.ResponseWriter, r *http.Request) {
	var req generateProgramRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	equipment := make([]training.Equipment, 0, len(req.Equipment))
	for _, e := range req.Equipment {
		equipment = append(equipment, training.Equipment(e))
	}
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	workouts, err := app.coach.GenerateProgram(r.Context(), userID, training.GenerateRequest{
		Goal:        training.Goal(req.Goal),
		DaysPerWeek: req.DaysPerWeek,
		Equipment:   equipment,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, newGeneratedWorkoutResponses(workouts))
}
