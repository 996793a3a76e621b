package main

import (
	"flag"
	"log"

	"github.com/LuizZaim/SolarView-Demo/internal/analysis"
	"github.com/LuizZaim/SolarView-Demo/internal/config"
	"github.com/LuizZaim/SolarView-Demo/internal/devices"
	"github.com/LuizZaim/SolarView-Demo/internal/pipeline"
	"github.com/LuizZaim/SolarView-Demo/internal/sems"
	"github.com/LuizZaim/SolarView-Demo/internal/server"
	"github.com/LuizZaim/SolarView-Demo/internal/weather"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	semsClient := sems.NewClient(cfg.Sems.Account, cfg.Sems.Password, cfg.Sems.LoginRegion, cfg.Sems.DataRegion)
	weatherClient := weather.NewClient(cfg.Weather.Latitude, cfg.Weather.Longitude, cfg.Weather.Timezone)

	svc := pipeline.NewService(semsClient, cfg.Sems.InverterID, cfg.TodayTTL())
	engine := analysis.NewEngine(weatherClient, cfg.Analysis.ExpectedDailyEnergyKwh)

	pump := devices.NewPump(50)
	registry := devices.NewRegistry("boiler", "ev_charger", "irrigation")

	httpServer := server.NewServer(svc, engine, pump, registry, server.Credentials{
		Username: cfg.Dashboard.Username,
		Password: cfg.Dashboard.Password,
	})

	log.Printf("Starting server on %s (inverter %s)", cfg.Server.Addr, cfg.Sems.InverterID)
	if err := httpServer.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
