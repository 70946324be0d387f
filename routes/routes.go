package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mbolis/quick-enroll/app"
	"github.com/mbolis/quick-enroll/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret)).
		Mount("/admin", servePrivateFiles("/admin"))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get(`/formations/{id:^\d+$}/form`, PublicGetForm(app))
	api.Get(`/formations/{id:^\d+$}/form/html`, PublicRenderForm(app))
	api.Post(`/formations/{id:^\d+$}/enrollments`, PublicEnroll(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		// CRUD formation + enrollment form definition
		r.Post("/formations", CreateFormation(app))
		r.Get("/formations", ListFormations(app))
		r.Get(`/formations/{id:^\d+$}`, GetFormationById(app))
		r.Put(`/formations/{id:^\d+$}`, UpdateFormation(app))
		r.Delete(`/formations/{id:^\d+$}`, DeleteFormation(app))

		r.Get(`/formations/{id:^\d+$}/enrollments`, GetFormationEnrollments(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

func servePrivateFiles(path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir("private")))
}
