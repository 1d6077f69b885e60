package main

import (
	"context"
	"os"

	"cinara/app"
	"cinara/config"
	"cinara/db"
	"cinara/routes"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	ctx := context.Background()
	app.PromoteAdmins(ctx, application.Config, db.NewRepo(application.DB), application.Log)

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	application.Log.Info("listening", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		application.Log.Fatal("server", zap.Error(err))
	}
}
