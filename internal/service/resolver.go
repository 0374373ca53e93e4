package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/karstmaps/threewords/internal/geocoding"
	"github.com/karstmaps/threewords/internal/metrics"
	"github.com/karstmaps/threewords/internal/models"
	"github.com/karstmaps/threewords/internal/repository"
)

// direction labels which way a site is being resolved.
type direction string

const (
	directionForward direction = "forward" // three-word label -> coordinates
	directionReverse direction = "reverse" // coordinates -> three-word label
)

// job pairs a site with the direction it needs resolving in.
type job struct {
	site      models.Site
	direction direction
}

// ResolverService periodically scans the site store and fills in whichever
// half of a site is missing: coordinates for sites entered by three-word
// label, or the label for sites entered by coordinates.
type ResolverService struct {
	log          *slog.Logger         // Logger for logging service activities
	repo         repository.Interface // Interface for data repository access
	geocoder     geocoding.Geocoder   // Client for the what3words API
	lang         string               // Language code for returned labels
	metrics      *metrics.Metrics     // Metrics for tracking service performance
	numWorkers   int                  // Number of concurrent workers for processing
	pollInterval time.Duration        // Interval for polling unresolved sites
}

// NewResolverService creates a new instance of ResolverService.
// It takes a logger, a repository interface, a geocoder, the label language,
// metrics for monitoring, the number of workers to use, and a polling
// interval. It returns a pointer to the newly created ResolverService.
func NewResolverService(
	log *slog.Logger,
	repo repository.Interface,
	geocoder geocoding.Geocoder,
	lang string,
	metrics *metrics.Metrics,
	numWorkers int,
	pollInterval time.Duration,
) *ResolverService {
	return &ResolverService{
		log:          log,
		repo:         repo,
		geocoder:     geocoder,
		lang:         lang,
		metrics:      metrics,
		numWorkers:   numWorkers,
		pollInterval: pollInterval,
	}
}

// Run starts the resolver service, which periodically polls for unresolved sites.
// It listens for a cancellation signal from the context to gracefully stop the service.
func (rs *ResolverService) Run(ctx context.Context) {
	ticker := time.NewTicker(rs.pollInterval)
	defer ticker.Stop()

	rs.log.InfoContext(ctx, "Resolver service started...")

	for {
		select {
		case <-ctx.Done():
			rs.log.InfoContext(ctx, "Resolver service stopped.")
			return
		case <-ticker.C:
			rs.log.InfoContext(ctx, "Polling for unresolved sites...")
			rs.processBatch(ctx)
		}
	}
}

// processBatch fetches unresolved sites in both directions, starts a worker
// pool to process them, and waits for all workers to finish.
func (rs *ResolverService) processBatch(ctx context.Context) {
	siteLimit := 100

	forward, err := rs.repo.FetchSitesMissingCoordinates(ctx, siteLimit)
	if err != nil {
		rs.log.ErrorContext(ctx, "Failed to fetch sites missing coordinates", "error", err)
		return
	}

	reverse, err := rs.repo.FetchSitesMissingWords(ctx, siteLimit)
	if err != nil {
		rs.log.ErrorContext(ctx, "Failed to fetch sites missing words", "error", err)
		return
	}

	if len(forward) == 0 && len(reverse) == 0 {
		rs.log.InfoContext(ctx, "No sites to resolve.")
		return
	}

	rs.log.InfoContext(
		ctx,
		"Found sites to resolve. Starting worker pool.",
		"forward", len(forward),
		"reverse", len(reverse),
		"num_workers", rs.numWorkers,
	)

	jobs := make(chan job, len(forward)+len(reverse))
	var wgr sync.WaitGroup

	for i := 1; i <= rs.numWorkers; i++ {
		wgr.Add(1)
		go rs.worker(ctx, i, &wgr, jobs)
	}

	for _, site := range forward {
		jobs <- job{site: site, direction: directionForward}
	}
	for _, site := range reverse {
		jobs <- job{site: site, direction: directionReverse}
	}
	close(jobs)

	wgr.Wait()
	rs.log.InfoContext(ctx, "Processing batch finished")
}

// worker consumes jobs from the channel, resolves each site in its missing
// direction, and persists the result. Failures bump the site's attempt
// counter with the error message so the batch query can retire it.
func (rs *ResolverService) worker(ctx context.Context, idx int, wg *sync.WaitGroup, jobs <-chan job) {
	defer wg.Done()
	for item := range jobs {
		rs.metrics.ActiveWorkers.Inc()
		rs.log.DebugContext(ctx, "Resolving site", "worker", idx, "site", item.site.ID, "direction", item.direction)

		startTime := time.Now()
		location, err := rs.resolve(ctx, item)
		duration := time.Since(startTime).Seconds()
		rs.metrics.RequestSeconds.WithLabelValues(string(item.direction)).Observe(duration)

		if err != nil {
			rs.log.ErrorContext(ctx, "Failed to resolve site", "worker", idx, "site", item.site.ID, "error", err)
			rs.metrics.SitesProcessed.WithLabelValues("failure").Inc()
			rs.metrics.APIErrors.Inc()

			if err = rs.repo.IncrementFailureCount(ctx, item.site.ID, err.Error()); err != nil {
				rs.log.ErrorContext(
					ctx,
					"Could not update failure count for site",
					"worker", idx,
					"site", item.site.ID,
					"error", err,
				)
			}
			rs.metrics.ActiveWorkers.Dec()
			continue
		}

		rs.metrics.SitesProcessed.WithLabelValues("success").Inc()

		if err = rs.store(ctx, item, location); err != nil {
			rs.log.ErrorContext(
				ctx,
				"Failed to store resolution for site",
				"worker", idx,
				"site", item.site.ID,
				"error", err,
			)
		} else {
			rs.log.DebugContext(ctx, "Worker successfully resolved the site", "worker", idx, "site", item.site.ID)
		}

		rs.metrics.ActiveWorkers.Dec()
	}
}

func (rs *ResolverService) resolve(ctx context.Context, item job) (*models.Location, error) {
	if item.direction == directionForward {
		return rs.geocoder.Geocode(ctx, item.site.Words, rs.lang)
	}

	return rs.geocoder.Reverse(ctx, item.site.Point, rs.lang)
}

func (rs *ResolverService) store(ctx context.Context, item job, location *models.Location) error {
	if item.direction == directionForward {
		return rs.repo.UpdateSiteCoordinates(ctx, item.site.ID, location.Point)
	}

	return rs.repo.UpdateSiteWords(ctx, item.site.ID, location.Words)
}
