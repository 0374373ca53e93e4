package repository

import (
	"context"
	"fmt"

	"github.com/karstmaps/threewords/internal/models"
)

// FetchSitesMissingCoordinates retrieves sites that carry a three-word label
// but no coordinates yet. Sites that already failed five times are skipped
// and left for manual review. The results are ordered by creation date and
// limited to the specified count.
func (r *Repository) FetchSitesMissingCoordinates(ctx context.Context, limit int) ([]models.Site, error) {
	var sites []models.Site
	query := `
		SELECT site_id, words
		FROM public.sites
		WHERE
			latitude IS NULL
			AND words IS NOT NULL AND words <> ''
			AND resolve_attempts < 5
		ORDER BY created_at ASC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites missing coordinates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var site models.Site
		if errScan := rows.Scan(&site.ID, &site.Words); errScan != nil {
			return nil, fmt.Errorf("failed to scan site missing coordinates: %w", errScan)
		}
		r.log.DebugContext(ctx, "Found a site without coordinates.", "ID", site.ID, "words", site.Words)
		sites = append(sites, site)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return sites, nil
}

// FetchSitesMissingWords retrieves sites that carry coordinates but no
// three-word label yet, subject to the same attempt cap and ordering as
// FetchSitesMissingCoordinates.
func (r *Repository) FetchSitesMissingWords(ctx context.Context, limit int) ([]models.Site, error) {
	var sites []models.Site
	query := `
		SELECT site_id, latitude, longitude
		FROM public.sites
		WHERE
			(words IS NULL OR words = '')
			AND latitude IS NOT NULL
			AND longitude IS NOT NULL
			AND resolve_attempts < 5
		ORDER BY created_at ASC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites missing words: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var site models.Site
		if errScan := rows.Scan(&site.ID, &site.Point.Latitude, &site.Point.Longitude); errScan != nil {
			return nil, fmt.Errorf("failed to scan site missing words: %w", errScan)
		}
		r.log.DebugContext(ctx, "Found a site without a three-word label.", "ID", site.ID, "point", site.Point)
		sites = append(sites, site)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return sites, nil
}

// UpdateSiteCoordinates stores the resolved coordinates of a site and clears
// its resolution error. It returns an error if the update fails.
func (r *Repository) UpdateSiteCoordinates(ctx context.Context, siteID int, point models.Coordinates) error {
	query := `
		UPDATE sites
		SET
			latitude = $1,
			longitude = $2,
			resolve_error = NULL
		WHERE
			site_id = $3;
	`

	_, err := r.db.Exec(ctx, query, point.Latitude, point.Longitude, siteID)
	if err != nil {
		return fmt.Errorf("failed to update site coordinates: %w", err)
	}

	return nil
}

// UpdateSiteWords stores the resolved three-word label of a site and clears
// its resolution error. It returns an error if the update fails.
func (r *Repository) UpdateSiteWords(ctx context.Context, siteID int, words string) error {
	query := `
		UPDATE sites
		SET
			words = $1,
			resolve_error = NULL
		WHERE
			site_id = $2;
	`

	_, err := r.db.Exec(ctx, query, words, siteID)
	if err != nil {
		return fmt.Errorf("failed to update site words: %w", err)
	}

	return nil
}

// IncrementFailureCount increments the resolution attempt count for a
// specific site identified by siteID and records the associated error
// message. If the update operation fails, it returns an error with
// additional context.
func (r *Repository) IncrementFailureCount(ctx context.Context, siteID int, errMsg string) error {
	query := `
		UPDATE sites
		SET
			resolve_attempts = resolve_attempts + 1,
			resolve_error = $1
		WHERE site_id = $2;
	`

	_, err := r.db.Exec(ctx, query, errMsg, siteID)
	if err != nil {
		return fmt.Errorf("failed to update resolution error and number of attempts: %w", err)
	}

	return nil
}
