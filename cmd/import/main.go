// Command import runs one catalog import from the command line and prints
// the run summary as JSON.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Randallflagg19/travel/internal/catalog"
	"github.com/Randallflagg19/travel/internal/config"
	"github.com/Randallflagg19/travel/internal/ingest"
	"github.com/Randallflagg19/travel/internal/logging"
	"github.com/Randallflagg19/travel/internal/platform/cloudinary"
	"github.com/Randallflagg19/travel/internal/user"
)

func main() {
	var (
		prefix     = flag.String("prefix", "", "Root folder to import (defaults to IMPORT_DEFAULT_ROOT)")
		maxItems   = flag.Int("max", 0, "Item budget (0 means IMPORT_MAX_ITEMS)")
		repair     = flag.Bool("repair", false, "Fill missing capture time and coordinates on existing rows")
		ownerEmail = flag.String("owner-email", os.Getenv("IMPORT_OWNER_EMAIL"), "Email of the user imported assets belong to")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if !cfg.Cloudinary.Enabled() {
		logging.Fatal().Msg("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
	}
	if *ownerEmail == "" {
		logging.Fatal().Msg("-owner-email is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	owner, err := user.NewService(user.NewPostgresRepo(pool, cfg.Database.QueryTimeout)).ResolveOwner(ctx, *ownerEmail)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to resolve import owner")
	}

	client := cloudinary.NewClient(cloudinary.Config{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
		BaseURL:   cfg.Cloudinary.BaseURL,
		RPS:       cfg.Cloudinary.RPS,
		Timeout:   cfg.Cloudinary.Timeout,
	})
	writer := catalog.NewWriter(catalog.NewPostgresRepo(pool, cfg.Database.QueryTimeout))
	svc := ingest.NewService(client, writer, ingest.ConfigFrom(cfg.Import))

	summary, runErr := svc.Run(ctx, ingest.Request{
		Prefix:  *prefix,
		Max:     *maxItems,
		Repair:  *repair,
		OwnerID: owner,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		logging.Error().Err(err).Msg("failed to write summary")
	}
	if runErr != nil {
		logging.Fatal().Err(runErr).Msg("import did not finish")
	}
}
