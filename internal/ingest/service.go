package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Randallflagg19/travel/internal/catalog"
	"github.com/Randallflagg19/travel/internal/config"
	"github.com/Randallflagg19/travel/internal/logging"
	"github.com/Randallflagg19/travel/internal/mediameta"
	"github.com/Randallflagg19/travel/internal/metrics"
	"github.com/Randallflagg19/travel/internal/platform/cloudinary"
)

var (
	ErrPrefixRequired = errors.New("import prefix is required")
	ErrNotConfigured  = errors.New("dam provider is not configured")
)

// Kinds are imported in this order within every folder.
var importKinds = []cloudinary.ResourceKind{cloudinary.KindImage, cloudinary.KindVideo}

type Config struct {
	DefaultRoot     string
	DefaultMaxItems int
	MaxItemsCap     int
	PageSize        int
	MaxFolders      int
	MaxErrors       int
	Enrich          bool
}

// ConfigFrom maps the loaded import settings onto a run configuration.
func ConfigFrom(c config.ImportConfig) Config {
	return Config{
		DefaultRoot:     c.DefaultRoot,
		DefaultMaxItems: c.DefaultMaxItems,
		MaxItemsCap:     c.MaxItemsCap,
		PageSize:        c.PageSize,
		MaxFolders:      c.MaxFolders,
		MaxErrors:       c.MaxErrors,
		Enrich:          c.Enrich,
	}
}

// DAM is the part of the provider client an import needs.
type DAM interface {
	CloudName() string
	ListResources(ctx context.Context, folder string, kind cloudinary.ResourceKind, maxResults int, cursor string) (*cloudinary.ResourcePage, error)
	ListSubfolders(ctx context.Context, folder string) ([]string, error)
	GetResource(ctx context.Context, publicID string, kind cloudinary.ResourceKind) (*cloudinary.ResourceDetails, error)
}

type AssetWriter interface {
	Upsert(ctx context.Context, a catalog.Asset) (catalog.WriteResult, error)
	Repair(ctx context.Context, externalID string, e catalog.Enrichment) (bool, error)
}

// Request triggers one import. Max of zero means the configured default.
type Request struct {
	Prefix  string
	Max     int
	Repair  bool
	OwnerID string
}

type Service struct {
	dam    DAM
	writer AssetWriter
	cfg    Config
	now    func() time.Time
}

// NewService creates an import service. dam may be nil when the provider is
// not configured; runs then fail with ErrNotConfigured.
func NewService(dam DAM, writer AssetWriter, cfg Config) *Service {
	if cfg.DefaultMaxItems < 1 {
		cfg.DefaultMaxItems = 2000
	}
	if cfg.MaxItemsCap < 1 {
		cfg.MaxItemsCap = 10000
	}
	if cfg.PageSize < 1 || cfg.PageSize > 500 {
		cfg.PageSize = 500
	}
	if cfg.MaxFolders < 1 {
		cfg.MaxFolders = 500
	}
	if cfg.MaxErrors < 0 {
		cfg.MaxErrors = 50
	}
	return &Service{
		dam:    dam,
		writer: writer,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) budget(requested int) int {
	if requested == 0 {
		requested = s.cfg.DefaultMaxItems
	}
	return min(max(requested, 1), s.cfg.MaxItemsCap)
}

func (s *Service) resolvePrefix(prefix string) (string, error) {
	if p := normalizeFolder(prefix); p != "" {
		return p, nil
	}
	if p := normalizeFolder(s.cfg.DefaultRoot); p != "" {
		return p, nil
	}
	return "", ErrPrefixRequired
}

// Run mirrors every resource under req.Prefix into the catalog, up to the
// item budget. Listing and write failures are recorded in the summary and do
// not stop the run. A cancelled context stops the run between resources and
// returns the partial summary together with the context error.
func (s *Service) Run(ctx context.Context, req Request) (Summary, error) {
	if s.dam == nil {
		return Summary{}, ErrNotConfigured
	}
	prefix, err := s.resolvePrefix(req.Prefix)
	if err != nil {
		return Summary{}, err
	}
	if req.OwnerID == "" {
		return Summary{}, catalog.ErrOwnerRequired
	}

	ctx = logging.ContextWithNewCorrelationID(ctx)
	log := logging.Ctx(ctx)
	budget := s.budget(req.Max)
	r := newRun(prefix, s.cfg.MaxErrors, s.now())

	log.Info().Str("prefix", prefix).Int("budget", budget).Bool("repair", req.Repair).Msg("import started")

	r.summary.Phase = PhaseDiscovering
	folders := DiscoverFolders(ctx, s.dam, prefix, s.cfg.MaxFolders, func(folder string, err error) {
		log.Warn().Err(err).Str("folder", folder).Msg("list subfolders failed")
		r.addError(ErrorEntry{Stage: StageList, Folder: folder, Message: err.Error()})
	})
	r.summary.Folders = len(folders)
	log.Debug().Int("folders", len(folders)).Msg("discovery finished")

	r.summary.Phase = PhaseImporting
	remaining := budget
units:
	for _, folder := range folders {
		for _, kind := range importKinds {
			if remaining <= 0 || ctx.Err() != nil {
				break units
			}
			t := s.importUnit(ctx, folder, kind, remaining, req)
			r.merge(t)
			remaining -= t.scanned
		}
	}

	r.summary.Phase = PhaseDone
	r.summary.FinishedAt = s.now()
	metrics.ImportRunDuration.Observe(r.summary.FinishedAt.Sub(r.summary.StartedAt).Seconds())

	if err := ctx.Err(); err != nil {
		metrics.ImportRuns.WithLabelValues("aborted").Inc()
		log.Warn().Err(err).Int("scanned", r.summary.Scanned).Int("inserted", r.summary.Inserted).Msg("import aborted")
		return r.summary, err
	}

	metrics.ImportRuns.WithLabelValues("completed").Inc()
	log.Info().
		Int("folders", r.summary.Folders).
		Int("scanned", r.summary.Scanned).
		Int("inserted", r.summary.Inserted).
		Int("repaired", r.summary.Repaired).
		Int("errors", r.summary.ErrorCount).
		Msg("import finished")
	return r.summary, nil
}

// importUnit pages through one (folder, kind) listing until it is exhausted
// or budget resources have been scanned.
func (s *Service) importUnit(ctx context.Context, folder string, kind cloudinary.ResourceKind, budget int, req Request) tally {
	var t tally
	cursor := ""
	for t.scanned < budget {
		if ctx.Err() != nil {
			return t
		}
		pageSize := min(s.cfg.PageSize, budget-t.scanned)
		page, err := s.dam.ListResources(ctx, folder, kind, pageSize, cursor)
		if err != nil {
			if ctx.Err() != nil {
				return t
			}
			logging.Ctx(ctx).Warn().Err(err).Str("folder", folder).Str("kind", string(kind)).Msg("list resources failed")
			t.fail(ErrorEntry{Stage: StageList, Folder: folder, Kind: string(kind), Message: err.Error()})
			return t
		}

		for _, res := range page.Resources {
			if t.scanned >= budget || ctx.Err() != nil {
				return t
			}
			t.scanned++
			s.importResource(ctx, res, folder, kind, req, &t)
		}

		if page.NextCursor == "" || len(page.Resources) == 0 {
			return t
		}
		cursor = page.NextCursor
	}
	return t
}

func (s *Service) importResource(ctx context.Context, res cloudinary.Resource, listed string, kind cloudinary.ResourceKind, req Request, t *tally) {
	fail := func(err error) {
		t.fail(ErrorEntry{
			Stage:    StageInsert,
			Folder:   listed,
			Kind:     string(kind),
			Resource: res.PublicID,
			Message:  err.Error(),
		})
	}

	resourceType := res.ResourceType
	if resourceType == "" {
		resourceType = string(kind)
	}
	mediaKind := Classify(resourceType, res.Format)

	url := mediaURL(s.dam.CloudName(), kind, res)
	if url == "" {
		fail(catalog.ErrNoMediaURL)
		return
	}

	folder := FolderOf(res)
	meta := s.enrich(ctx, res.PublicID, mediaKind)

	a := catalog.Asset{
		UserID:    req.OwnerID,
		MediaKind: mediaKind,
		MediaURL:  url,
		Lat:       meta.Lat,
		Lng:       meta.Lng,
		CreatedAt: s.createdAt(res, meta),
	}
	if res.PublicID != "" {
		id := res.PublicID
		a.ExternalID = &id
	}
	if folder != "" {
		a.Folder = &folder
		a.Country, a.City = PlaceOf(folder)
	}

	result, err := s.writer.Upsert(ctx, a)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("resource", res.PublicID).Msg("write failed")
		fail(err)
		return
	}
	if result.Inserted {
		t.inserted++
		return
	}

	if req.Repair && !meta.IsZero() && a.ExternalID != nil {
		changed, err := s.writer.Repair(ctx, *a.ExternalID, catalog.Enrichment{
			CapturedAt: meta.CapturedAt,
			Lat:        meta.Lat,
			Lng:        meta.Lng,
		})
		if err != nil {
			fail(fmt.Errorf("repair: %w", err))
			return
		}
		if changed {
			t.repaired++
		}
	}
}

// enrich fetches the resource's embedded metadata. Any failure yields empty
// metadata.
func (s *Service) enrich(ctx context.Context, publicID string, kind catalog.MediaKind) mediameta.Metadata {
	if !s.cfg.Enrich || publicID == "" {
		return mediameta.Metadata{}
	}
	details, err := s.dam.GetResource(ctx, publicID, kind.ResourceKind())
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("resource", publicID).Msg("metadata fetch failed")
		return mediameta.Metadata{}
	}
	if kind == catalog.MediaPhoto {
		return mediameta.FromPhoto(details.Tags())
	}
	return mediameta.FromVideo(details.Tags())
}

// createdAt is the capture time when known, then the upload time, then now.
func (s *Service) createdAt(res cloudinary.Resource, meta mediameta.Metadata) time.Time {
	if meta.CapturedAt != nil {
		return meta.CapturedAt.UTC()
	}
	if t, ok := res.Created(); ok {
		return t
	}
	return s.now()
}

// ProbeSample is one resource returned by a probe.
type ProbeSample struct {
	PublicID string `json:"public_id"`
	Folder   string `json:"folder"`
	Format   string `json:"format,omitempty"`
}

type ProbeKind struct {
	Kind    string        `json:"kind"`
	Count   int           `json:"count"`
	Total   int           `json:"total"`
	Samples []ProbeSample `json:"samples"`
	Error   string        `json:"error,omitempty"`
}

type ProbeResult struct {
	Prefix     string      `json:"prefix"`
	CloudName  string      `json:"cloud_name"`
	Subfolders []string    `json:"subfolders"`
	Kinds      []ProbeKind `json:"kinds"`
}

const probeSampleSize = 5

// Probe lists a few resources of each kind directly under prefix. It writes
// nothing and is meant for checking credentials and folder names.
func (s *Service) Probe(ctx context.Context, prefix string) (ProbeResult, error) {
	if s.dam == nil {
		return ProbeResult{}, ErrNotConfigured
	}
	prefix, err := s.resolvePrefix(prefix)
	if err != nil {
		return ProbeResult{}, err
	}

	out := ProbeResult{Prefix: prefix, CloudName: s.dam.CloudName(), Subfolders: []string{}}
	subs, err := s.dam.ListSubfolders(ctx, prefix)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("folder", prefix).Msg("probe: list subfolders failed")
	}
	out.Subfolders = append(out.Subfolders, subs...)

	for _, kind := range importKinds {
		pk := ProbeKind{Kind: string(kind), Samples: []ProbeSample{}}
		page, err := s.dam.ListResources(ctx, prefix, kind, probeSampleSize, "")
		if err != nil {
			pk.Error = err.Error()
			out.Kinds = append(out.Kinds, pk)
			continue
		}
		pk.Count = len(page.Resources)
		pk.Total = page.TotalCount
		for _, res := range page.Resources {
			pk.Samples = append(pk.Samples, ProbeSample{PublicID: res.PublicID, Folder: FolderOf(res), Format: res.Format})
		}
		out.Kinds = append(out.Kinds, pk)
	}
	return out, nil
}
