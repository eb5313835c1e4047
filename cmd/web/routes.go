package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		// handle registers a route whose handler is instrumented with the route pattern.
		handle = func(pattern string, h http.Handler) {
			mux.Handle(pattern, app.metrics.Middleware(h))
		}
		public = func(next http.HandlerFunc) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(app.timeout(next)))
		}
		api = func(next http.HandlerFunc) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(noCache(app.identifyUser(app.rateLimit(
				app.timeout(next))))))
		}
	)

	handle("GET /api/healthy", app.recoverPanic(http.HandlerFunc(app.healthy)))
	handle("GET /metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	handle("GET /api/exercises", api(app.exerciseGET))

	handle("POST /api/workouts", api(app.workoutsPOST))
	handle("POST /api/workouts/{workoutID}/sets", api(app.workoutSetsPOST))
	handle("POST /api/workouts/{workoutID}/complete", api(app.workoutCompletePOST))
	handle("POST /api/workouts/{workoutID}/progression", api(app.workoutProgressionPOST))
	handle("POST /api/workouts/{workoutID}/records", api(app.workoutRecordsPOST))
	handle("POST /api/sets", api(app.setsPOST))

	handle("GET /api/progression", api(app.progressionGET))
	handle("GET /api/achievements", api(app.achievementsGET))
	handle("GET /api/streak", api(app.streakGET))
	handle("GET /api/volume", api(app.volumeGET))

	handle("POST /api/programs/match", api(app.programsMatchPOST))
	handle("POST /api/programs/generate", api(app.programsGeneratePOST))
	handle("GET /api/programs", public(app.programsGET))
	handle("GET /api/programs/{slug}", public(app.programGET))
	handle("GET /programs/{slug}", public(app.programPageGET))

	return mux
}
