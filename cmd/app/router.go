package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	handle := func(method, path string, h http.HandlerFunc) {
		router.Handler(method, path, app.instrument(path, h))
	}

	// accounts
	handle(http.MethodPost, "/signup", app.signupHandler)
	handle(http.MethodPost, "/signin", app.signinHandler)
	handle(http.MethodPost, "/google-auth", app.googleAuthHandler)
	handle(http.MethodPost, "/search-users", app.searchUsersHandler)

	// blogs
	handle(http.MethodGet, "/get-upload-url", app.getUploadURLHandler)
	handle(http.MethodPost, "/create-blog", app.requireAuthUser(app.createBlogHandler))
	handle(http.MethodPost, "/latest-blogs", app.latestBlogsHandler)
	handle(http.MethodPost, "/all-latest-blogs-count", app.latestBlogsCountHandler)
	handle(http.MethodPost, "/search-blogs", app.searchBlogsHandler)
	handle(http.MethodPost, "/search-blogs-count", app.searchBlogsCountHandler)
	handle(http.MethodGet, "/trending-blogs", app.trendingBlogsHandler)

	handle(http.MethodGet, "/healthcheck", app.healthCheckHandler)
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	return app.recoverPanic(app.enableCORS(app.logRequest(router)))
}
