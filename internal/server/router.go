package server

import (
	"context"
	"net/http"

	"nutrilog/internal/handlers"
	applog "nutrilog/internal/log"
)

type route struct {
	pattern string
	handler http.HandlerFunc
}

func routes() []route {
	return []route{
		{"/healthz", handlers.Health},
		{"/app", handlers.Dashboard},
		{"/app/save", handlers.Save},
		{"/app/preferences/update", handlers.UpdatePreferences},
		{"/app/reports/recipe", handlers.GenerateRecipeReport},
		{"/app/api/products", handlers.ProductResource},
		{"/app/api/products/", handlers.ProductResource},
		{"/app/api/recipes", handlers.RecipeResource},
		{"/app/api/recipes/", handlers.RecipeResource},
		{"/app/api/days", handlers.DayResource},
		{"/app/api/days/", handlers.DayResource},
		{"/app/api/favorites", handlers.Favorites},
		{"/app/api/targets", handlers.Targets},
		{"/", handlers.Home},
	}
}

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	for _, r := range routes() {
		mux.HandleFunc(r.pattern, r.handler)
		applog.Debug(context.Background(), "route registered", "path", r.pattern)
	}
	return mux
}
