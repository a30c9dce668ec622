// tidewriter fetches water level time series from the IWLS REST API,
// serves them as GeoJSON features, and generates S-104 DCF8 product files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/oceanobs/tidewriter/internal/iwls"
	"github.com/oceanobs/tidewriter/internal/log"
	"github.com/oceanobs/tidewriter/internal/provider"
	"github.com/oceanobs/tidewriter/internal/restserver"
	"github.com/oceanobs/tidewriter/internal/s100"
	"github.com/oceanobs/tidewriter/internal/s104"
	"github.com/oceanobs/tidewriter/pkg/config"
)

type appContext struct {
	cfg    *config.ConfigData
	client *iwls.Client
	cache  *iwls.Cache
}

func (a *appContext) generator() *s100.Generator {
	product := s104.NewProduct(a.cfg.Product.TrendThreshold)
	return s100.NewGenerator(a.cfg.Product.TemplatePath, a.cfg.Product.OutputFolder, product)
}

type serveCmd struct{}

func (s *serveCmd) Run(app *appContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wg := &sync.WaitGroup{}
	prov := provider.New(app.client, app.cfg.RESTServer.DefaultListLen)

	ctrl, err := restserver.NewController(ctx, wg, app.cfg.RESTServer, prov, app.generator(), log.GetSugaredLogger())
	if err != nil {
		return err
	}
	if err := ctrl.StartController(); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutting down")
	wg.Wait()
	return nil
}

type generateCmd struct {
	Bbox  string `help:"Bounding box minx,miny,maxx,maxy" required:""`
	Start string `help:"Start time, ISO 8601 UTC (default: 24h ago)"`
	End   string `help:"End time, ISO 8601 UTC (default: 24h ahead)"`
	Limit int    `help:"Maximum stations to include" default:"10"`
}

func (g *generateCmd) Run(app *appContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	datetime := ""
	if g.Start != "" || g.End != "" {
		datetime = g.Start + "/" + g.End
	}

	bbox, err := parseBbox(g.Bbox)
	if err != nil {
		return err
	}

	prov := provider.New(app.client, app.cfg.RESTServer.DefaultListLen)
	fc, err := prov.Query(ctx, provider.QueryParams{
		Bbox:     bbox,
		Datetime: datetime,
		Limit:    g.Limit,
	})
	if err != nil {
		return err
	}
	if len(fc.Features) == 0 {
		return fmt.Errorf("no stations in bounding box %s", g.Bbox)
	}

	path, err := app.generator().Generate(fc.Features)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

type exportCSVCmd struct {
	Station string `arg:"" help:"Station code to export"`
	Out     string `help:"Output directory" default:"."`
}

func (e *exportCSVCmd) Run(app *appContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	now := time.Now().UTC()
	feature, err := app.client.StationData(ctx, e.Station, now.Add(-24*time.Hour), now.Add(24*time.Hour))
	if err != nil {
		return err
	}
	path, err := iwls.WriteStationCSV(e.Out, feature)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

var cli struct {
	Config string `help:"Path to configuration file" default:"tidewriter.yaml"`
	Debug  bool   `help:"Enable debug logging"`

	Serve     serveCmd     `cmd:"" help:"Run the HTTP API server"`
	Generate  generateCmd  `cmd:"" help:"Generate an S-104 product file for a bounding box"`
	ExportCSV exportCSVCmd `cmd:"" name:"export-csv" help:"Export one station's water level series to CSV"`
}

func parseBbox(raw string) (*iwls.BoundingBox, error) {
	var bbox iwls.BoundingBox
	if _, err := fmt.Sscanf(raw, "%f,%f,%f,%f", &bbox[0], &bbox[1], &bbox[2], &bbox[3]); err != nil {
		return nil, fmt.Errorf("bbox %q: want minx,miny,maxx,maxy", raw)
	}
	return &bbox, nil
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("tidewriter"),
		kong.Description("IWLS water level features and S-104 product generation"),
		kong.UsageOnError(),
	)

	cfgProvider := config.NewYAMLProvider(cli.Config)
	cfg, err := cfgProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config %s: %v\n", cli.Config, err)
		os.Exit(1)
	}

	if err := log.Init(cli.Debug || cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	app := &appContext{cfg: cfg}

	opts := []iwls.Option{iwls.WithMaxRetries(uint64(cfg.API.MaxRetries))}
	if cfg.API.CachePath != "" {
		cache, err := iwls.OpenCache(cfg.API.CachePath, cfg.API.CacheTTL)
		if err != nil {
			log.Fatalf("opening API cache: %v", err)
		}
		defer cache.Close()
		app.cache = cache
		opts = append(opts, iwls.WithCache(cache))
	}
	app.client = iwls.NewClient(cfg.API.BaseURL, opts...)

	kctx.FatalIfErrorf(kctx.Run(app))
}
