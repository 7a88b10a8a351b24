package eac

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines read access to the EAC record store. The export core
// never queries storage itself; it receives this capability from the caller.
type Repository interface {
	ListCertificates(ctx context.Context, filters *CertificateFilters) ([]Certificate, error)
	ListProductionSources(ctx context.Context) ([]ProductionSource, error)
	ListEvents(ctx context.Context) ([]Event, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)

	// FetchRelatedData resolves the production sources, events and
	// organizations referenced by a certificate batch.
	FetchRelatedData(ctx context.Context, certificateIDs, productionSourceIDs []string) (*RelatedData, error)
}

// CertificateFilters narrows a certificate listing
type CertificateFilters struct {
	Types              []string `json:"types,omitempty"`
	ProductionSourceID string   `json:"production_source_id,omitempty"`
}

// Empty reports whether no filter is set
func (f *CertificateFilters) Empty() bool {
	return f == nil || (len(f.Types) == 0 && f.ProductionSourceID == "")
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const certificateColumns = `
	id, type, amounts, emissions, external_ids, metadata, links,
	COALESCE(production_source_id, '') AS production_source_id,
	created_at, updated_at
`

func (r *PostgresRepository) ListCertificates(ctx context.Context, filters *CertificateFilters) ([]Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM eacertificates WHERE 1=1`
	args := []interface{}{}

	if filters != nil && len(filters.Types) > 0 {
		args = append(args, pq.Array(filters.Types))
		query += fmt.Sprintf(" AND type = ANY($%d)", len(args))
	}
	if filters != nil && filters.ProductionSourceID != "" {
		args = append(args, filters.ProductionSourceID)
		query += fmt.Sprintf(" AND production_source_id = $%d", len(args))
	}
	query += " ORDER BY created_at"

	var certs []Certificate
	if err := r.db.SelectContext(ctx, &certs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certs, nil
}

func (r *PostgresRepository) ListProductionSources(ctx context.Context) ([]ProductionSource, error) {
	query := `
		SELECT id, COALESCE(name, '') AS name, COALESCE(description, '') AS description,
		       location, technology, organizations, external_ids, labels,
		       related_sources, operation_start_date
		FROM production_sources
		ORDER BY name
	`
	var sources []ProductionSource
	if err := r.db.SelectContext(ctx, &sources, query); err != nil {
		return nil, fmt.Errorf("failed to list production sources: %w", err)
	}
	return sources, nil
}

func (r *PostgresRepository) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := r.db.SelectContext(ctx, &events, eventQuery+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *PostgresRepository) ListOrganizations(ctx context.Context) ([]Organization, error) {
	query := `SELECT id, name, external_ids, location FROM organizations ORDER BY name`
	var orgs []Organization
	if err := r.db.SelectContext(ctx, &orgs, query); err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

const eventQuery = `
	SELECT id, target, target_id, type, dates, location, organizations,
	       links, metadata, COALESCE(notes, '') AS notes
	FROM events
`

func (r *PostgresRepository) FetchRelatedData(ctx context.Context, certificateIDs, productionSourceIDs []string) (*RelatedData, error) {
	related := &RelatedData{}

	if len(productionSourceIDs) > 0 {
		query := `
			SELECT id, COALESCE(name, '') AS name, COALESCE(description, '') AS description,
			       location, technology, organizations, external_ids, labels,
			       related_sources, operation_start_date
			FROM production_sources
			WHERE id = ANY($1)
		`
		if err := r.db.SelectContext(ctx, &related.ProductionSources, query, pq.Array(productionSourceIDs)); err != nil {
			return nil, fmt.Errorf("failed to fetch production sources: %w", err)
		}
	}

	targetIDs := append(append([]string{}, certificateIDs...), productionSourceIDs...)
	if len(targetIDs) > 0 {
		query := eventQuery + ` WHERE target_id = ANY($1)`
		if err := r.db.SelectContext(ctx, &related.Events, query, pq.Array(targetIDs)); err != nil {
			return nil, fmt.Errorf("failed to fetch events: %w", err)
		}
	}

	// Organizations are reached only through role entries on the fetched
	// events and production sources.
	orgIDs := collectOrgIDs(related.Events, related.ProductionSources)
	if len(orgIDs) > 0 {
		query := `SELECT id, name, external_ids, location FROM organizations WHERE id = ANY($1)`
		if err := r.db.SelectContext(ctx, &related.Organizations, query, pq.Array(orgIDs)); err != nil {
			return nil, fmt.Errorf("failed to fetch organizations: %w", err)
		}
	}

	return related, nil
}

func collectOrgIDs(events []Event, sources []ProductionSource) []string {
	seen := make(map[string]bool)
	ids := []string{}
	add := func(roles OrgRoleList) {
		for _, role := range roles {
			if role.OrgID != "" && !seen[role.OrgID] {
				seen[role.OrgID] = true
				ids = append(ids, role.OrgID)
			}
		}
	}
	for _, e := range events {
		add(e.Organizations)
	}
	for _, s := range sources {
		add(s.Organizations)
	}
	return ids
}
