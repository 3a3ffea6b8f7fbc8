package main

import (
	"roombook/internal/bootstrap"
	reservationhandler "roombook/internal/reservations/handler"
	roomhandler "roombook/internal/rooms/handler"
	"roombook/pkg/app"
	"roombook/pkg/config"
)

const ServiceName = "booking"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Booking service")
	bootstrap.Connect(cfg)

	components, err := bootstrap.Build(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize services", "error", err)
	}

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(func() {
		if err := components.Close(); err != nil {
			cfg.Log.Error("Failed to close event producer", "error", err)
		}
	})
	serverApp.SetApp(
		roomhandler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		roomhandler.NewRoomHandler(components.RoomService, cfg.Log),
		reservationhandler.NewReservationHandler(components.Engine, components.Queries, cfg.Log),
	)
	serverApp.Run()
}
