package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Randallflagg19/travel/internal/config"
	"github.com/Randallflagg19/travel/internal/httpx"
	"github.com/Randallflagg19/travel/internal/logging"
	"github.com/Randallflagg19/travel/internal/user"
)

type place struct {
	country string
	cities  []string
}

var places = []place{
	{"Вьетнам", []string{"Ханой", "Нячанг", "Хойан"}},
	{"Австрия", []string{"Вена", "Зальцбург"}},
	{"Грузия", []string{"Тбилиси", "Батуми"}},
	{"Турция", []string{"Стамбул"}},
}

var seedColumns = []string{
	"id", "user_id", "media_kind", "media_url", "external_id", "folder",
	"country", "city", "lat", "lng", "created_at", "updated_at",
}

func main() {
	var (
		count      = flag.Int("count", 10000, "Number of catalog rows to generate")
		adminEmail = flag.String("admin-email", "admin@example.com", "Owner of the generated rows, created as ADMIN when missing")
	)
	flag.Parse()

	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	owner, err := user.NewService(user.NewPostgresRepo(pool, cfg.Database.QueryTimeout)).Ensure(ctx, *adminEmail, httpx.RoleAdmin)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to ensure admin user")
	}
	logging.Info().Str("user_id", owner.ID).Str("email", owner.Email).Msg("seed owner ready")

	rows := generate(*count, owner.ID, time.Now().UTC())
	logging.Info().Int("count", len(rows)).Msg("inserting catalog rows")

	// COPY is far faster than row-by-row inserts for this volume.
	n, err := pool.CopyFrom(ctx, pgx.Identifier{"catalog_assets"}, seedColumns, pgx.CopyFromRows(rows))
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to insert catalog rows")
	}

	var total int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM catalog_assets").Scan(&total); err != nil {
		logging.Fatal().Err(err).Msg("failed to count catalog rows")
	}
	logging.Info().Int64("inserted", n).Int("total", total).Msg("seed finished")
}

// generate builds synthetic rows spread over a year. Every tenth row has no
// place, and a few share a timestamp so keyset ties get exercised.
func generate(count int, ownerID string, now time.Time) [][]any {
	owner := uuid.MustParse(ownerID)
	rows := make([][]any, 0, count)
	for i := range count {
		id := uuid.New()
		kind, ext := "PHOTO", "jpg"
		if i%7 == 0 {
			kind, ext = "VIDEO", "mp4"
		}
		createdAt := now.Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		if i%50 == 1 && len(rows) > 0 {
			createdAt = rows[len(rows)-1][10].(time.Time)
		}

		var country, city, folder *string
		var lat, lng *float64
		publicID := fmt.Sprintf("seed/%s", id)
		if i%10 != 0 {
			p := places[rand.Intn(len(places))]
			c := p.cities[rand.Intn(len(p.cities))]
			f := fmt.Sprintf("seed/%s/%s", p.country, c)
			country, city, folder = &p.country, &c, &f
			publicID = fmt.Sprintf("%s/%s", f, id)
			la, ln := rand.Float64()*140-70, rand.Float64()*360-180
			lat, lng = &la, &ln
		}

		url := fmt.Sprintf("https://res.cloudinary.com/demo/image/upload/%s.%s", publicID, ext)
		rows = append(rows, []any{
			id, owner, kind, url, publicID, folder,
			country, city, lat, lng, createdAt, createdAt,
		})
	}
	return rows
}
