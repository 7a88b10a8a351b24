package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/pkg/archive"
)

// EntityType identifies which entity collection an export covers
type EntityType string

const (
	EntityCertificates      EntityType = "eacertificates"
	EntityEvents            EntityType = "events"
	EntityOrganizations     EntityType = "organizations"
	EntityProductionSources EntityType = "production-sources"
)

// Progress step names, reported in phase order
const (
	StepCollecting  = "collecting"
	StepMapping     = "mapping"
	StepGenerating  = "generating"
	StepZipping     = "zipping"
	StepDownloading = "downloading"
)

// ErrNoData signals an export call with nothing to export. Handled locally
// by the caller with a user-facing notice; no file is produced.
var ErrNoData = errors.New("no data to export")

// Progress is one phase-transition notification
type Progress struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ProgressFunc receives phase transitions. Invoked synchronously and
// fire-and-forget; callers must not block in it.
type ProgressFunc func(Progress)

// Fetcher is the injected data-access capability: it resolves the entities
// related to a certificate batch. The export core never queries storage.
type Fetcher func(ctx context.Context, certificateIDs, productionSourceIDs []string) (*eac.RelatedData, error)

// File is a generated export artifact, held fully in memory
type File struct {
	Name    string `json:"name"`
	Content []byte `json:"-"`
}

const (
	timestampLayout = "2006-01-02_15-04-05"
)

// Service implements the generic export pipeline
type Service struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new export service
func NewService(logger *zap.Logger) *Service {
	return &Service{
		logger: logger,
		now:    time.Now,
	}
}

// ExportCSV formats one entity collection as a CSV file. data must be a
// slice of the entity kind named by entityType. filtered marks exports of a
// narrowed table view in the filename.
func (s *Service) ExportCSV(entityType EntityType, data interface{}, filtered bool) (*File, error) {
	rows, err := formatRows(entityType, data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	name := string(entityType)
	if filtered {
		name += "_filtered"
	}
	name += "_" + s.now().Format(timestampLayout) + ".csv"

	headers := CollectHeaders(rows)
	return &File{Name: name, Content: []byte(CSVContent(rows, headers))}, nil
}

// ExportRelatedZip exports a certificate batch together with its related
// production sources, events and organizations as one ZIP of CSV files, all
// sharing a single timestamp. Errors past the empty-input guard are logged
// and propagated; user-facing messaging is the caller's responsibility.
func (s *Service) ExportRelatedZip(ctx context.Context, certificates []eac.Certificate, fetch Fetcher, onProgress ProgressFunc) (*File, error) {
	if len(certificates) == 0 {
		return nil, ErrNoData
	}

	batchID := uuid.New()
	report := progressReporter(onProgress)

	report(StepCollecting, fmt.Sprintf("Collecting related records for %d certificates", len(certificates)))
	certIDs, psIDs := collectIDs(certificates)

	related, err := fetch(ctx, certIDs, psIDs)
	if err != nil {
		s.logger.Error("Failed to fetch related data",
			zap.String("batch_id", batchID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to fetch related data: %w", err)
	}

	report(StepGenerating, "Generating CSV files")
	ts := s.now().Format(timestampLayout)
	builder := archive.NewBuilder()

	addCSV := func(name string, rows []Row) {
		headers := CollectHeaders(rows)
		builder.Add(name+"_"+ts+".csv", []byte(CSVContent(rows, headers)))
	}

	addCSV("eacertificates", FormatCertificates(certificates))
	if len(related.ProductionSources) > 0 {
		addCSV("production_sources", FormatProductionSources(related.ProductionSources))
	}
	if len(related.Events) > 0 {
		addCSV("events", FormatEvents(related.Events))
	}
	if len(related.Organizations) > 0 {
		addCSV("organizations", FormatOrganizations(related.Organizations))
	}

	report(StepZipping, "Bundling files into archive")
	content, err := builder.Bytes()
	if err != nil {
		s.logger.Error("Failed to build export archive",
			zap.String("batch_id", batchID.String()),
			zap.Error(err))
		return nil, err
	}

	report(StepDownloading, "Preparing download")
	s.logger.Info("Related-entities export generated",
		zap.String("batch_id", batchID.String()),
		zap.Int("certificates", len(certificates)),
		zap.Int("files", builder.Len()))

	return &File{Name: "eac_export_" + ts + ".zip", Content: content}, nil
}

func formatRows(entityType EntityType, data interface{}) ([]Row, error) {
	switch entityType {
	case EntityCertificates:
		certs, ok := data.([]eac.Certificate)
		if !ok {
			return nil, fmt.Errorf("expected []eac.Certificate for %s, got %T", entityType, data)
		}
		return FormatCertificates(certs), nil
	case EntityEvents:
		events, ok := data.([]eac.Event)
		if !ok {
			return nil, fmt.Errorf("expected []eac.Event for %s, got %T", entityType, data)
		}
		return FormatEvents(events), nil
	case EntityOrganizations:
		orgs, ok := data.([]eac.Organization)
		if !ok {
			return nil, fmt.Errorf("expected []eac.Organization for %s, got %T", entityType, data)
		}
		return FormatOrganizations(orgs), nil
	case EntityProductionSources:
		sources, ok := data.([]eac.ProductionSource)
		if !ok {
			return nil, fmt.Errorf("expected []eac.ProductionSource for %s, got %T", entityType, data)
		}
		return FormatProductionSources(sources), nil
	default:
		return nil, fmt.Errorf("unsupported entity type: %s", entityType)
	}
}

// collectIDs extracts the unique certificate IDs and unique non-empty
// production source IDs from a batch, preserving first-seen order.
func collectIDs(certificates []eac.Certificate) (certIDs, psIDs []string) {
	seenCert := make(map[string]bool)
	seenPS := make(map[string]bool)
	for _, c := range certificates {
		if c.ID != "" && !seenCert[c.ID] {
			seenCert[c.ID] = true
			certIDs = append(certIDs, c.ID)
		}
		if c.ProductionSourceID != "" && !seenPS[c.ProductionSourceID] {
			seenPS[c.ProductionSourceID] = true
			psIDs = append(psIDs, c.ProductionSourceID)
		}
	}
	return certIDs, psIDs
}

func progressReporter(onProgress ProgressFunc) func(step, message string) {
	return func(step, message string) {
		if onProgress != nil {
			onProgress(Progress{Step: step, Message: message})
		}
	}
}
