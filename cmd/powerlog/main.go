package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/powerlog/internal/api"
	"github.com/lox/powerlog/internal/collector"
	"github.com/lox/powerlog/internal/inverter"
	"github.com/lox/powerlog/internal/store"
	"github.com/lox/powerlog/internal/weather"
)

type cli struct {
	EnvFile kongdotenv.ENVFileConfig `kong:"optional,name=env-file,help='Load environment variables from a .env file'"`

	DB        string  `kong:"default='powerlog.sqlite3',env='POWERLOG_DB',help='Path to the SQLite database'"`
	Latitude  float64 `kong:"default='52.500',env='POWERLOG_LATITUDE',help='Site latitude in decimal degrees'"`
	Longitude float64 `kong:"default='13.493',env='POWERLOG_LONGITUDE',help='Site longitude in decimal degrees'"`

	Collect collectCmd `kong:"cmd,help='Sample the inverter and weather APIs'"`
	Serve   serveCmd   `kong:"cmd,help='Serve the streaming query API'"`
}

type collectCmd struct {
	InverterURL string        `kong:"default='http://192.168.178.150:8050',env='POWERLOG_INVERTER_URL',help='Base URL of the inverter local API'"`
	WeatherURL  string        `kong:"default='',env='POWERLOG_WEATHER_URL',help='Override the open-meteo base URL'"`
	Interval    time.Duration `kong:"default='0',env='POWERLOG_INTERVAL',help='Sampling interval; 0 runs a single cycle and exits'"`
}

func (c *collectCmd) Run(root *cli) error {
	st, err := store.Open(root.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	inv := inverter.NewClient(c.InverterURL)
	wx := weather.NewClient(c.WeatherURL, root.Latitude, root.Longitude)
	col := collector.New(st, inv, wx, root.Latitude, root.Longitude)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if c.Interval <= 0 {
		return col.RunOnce(ctx)
	}

	log.Printf("collecting every %s", c.Interval)
	col.Run(ctx, c.Interval)
	return nil
}

type serveCmd struct {
	Port string `kong:"default='4334',env='POWERLOG_PORT',help='HTTP listen port'"`
}

func (c *serveCmd) Run(root *cli) error {
	st, err := store.Open(root.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("serving on :%s", c.Port)
	return api.NewServer(st, c.Port).Run(ctx)
}

func main() {
	var flags cli
	ctx := kong.Parse(&flags,
		kong.Name("powerlog"),
		kong.Description("Solar inverter telemetry logger and query API"),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)
	if err := ctx.Run(&flags); err != nil {
		log.Fatalf("%s: %v", ctx.Command(), err)
	}
}
