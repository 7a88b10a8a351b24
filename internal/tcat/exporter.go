package tcat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/export"
	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/pkg/archive"
)

// ErrNoSupportedCertificates signals a batch containing only certificate
// types excluded from TCAT export (RNG, CR). Distinct from export.ErrNoData
// so callers can message the two conditions differently.
var ErrNoSupportedCertificates = errors.New("none of the selected certificate types are supported for TCAT export")

const (
	zipTimestampLayout = "20060102-1504"
	vintageDateLayout  = "20060102"
)

// Service implements the TCAT disclosure export pipeline
type Service struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new TCAT export service
func NewService(logger *zap.Logger) *Service {
	return &Service{
		logger: logger,
		now:    time.Now,
	}
}

// ExportZip maps a certificate batch into TCAT records, grouped by
// certificate type, and bundles one transposed CSV per type into a single
// ZIP. Unsupported types are dropped up front; a batch with nothing left
// returns ErrNoSupportedCertificates without producing any file.
func (s *Service) ExportZip(ctx context.Context, certificates []eac.Certificate, fetch export.Fetcher, onProgress export.ProgressFunc) (*export.File, error) {
	groups, related, err := s.prepare(ctx, certificates, fetch, onProgress)
	if err != nil {
		return nil, err
	}

	report := progressReporter(onProgress)
	builder := archive.NewBuilder()

	for _, group := range groups {
		report(export.StepGenerating, fmt.Sprintf("Generating TCAT file for %s", group.certType))

		mapped, groupRange, err := s.mapGroup(group, related)
		if err != nil {
			return nil, err
		}

		rows := Transpose(mapped, FieldsForType(group.certType))
		builder.Add(tcatFileName(group.certType, groupRange), []byte(export.GridContent(rows)))
	}

	report(export.StepZipping, "Bundling TCAT files into archive")
	content, err := builder.Bytes()
	if err != nil {
		s.logger.Error("Failed to build TCAT archive", zap.Error(err))
		return nil, err
	}

	report(export.StepDownloading, "Preparing download")
	name := "PEACH_export_forTCAT_" + s.now().Format(zipTimestampLayout) + ".zip"
	s.logger.Info("TCAT export generated",
		zap.Int("types", builder.Len()),
		zap.String("file", name))

	return &export.File{Name: name, Content: content}, nil
}

// typeGroup is the certificates of one supported type, in input order
type typeGroup struct {
	certType     eac.CertificateType
	certificates []eac.Certificate
}

// prepare guards the batch, fetches related data and groups the supported
// certificates by type. Shared by the ZIP and PDF export paths.
func (s *Service) prepare(ctx context.Context, certificates []eac.Certificate, fetch export.Fetcher, onProgress export.ProgressFunc) ([]typeGroup, *relatedLookup, error) {
	if len(certificates) == 0 {
		return nil, nil, export.ErrNoData
	}

	supported := make([]eac.Certificate, 0, len(certificates))
	for _, c := range certificates {
		if IsSupported(c.Type) {
			supported = append(supported, c)
		}
	}
	if len(supported) == 0 {
		return nil, nil, ErrNoSupportedCertificates
	}

	report := progressReporter(onProgress)
	report(export.StepCollecting, fmt.Sprintf("Collecting related records for %d certificates", len(supported)))

	certIDs, psIDs := collectIDs(supported)
	related, err := fetch(ctx, certIDs, psIDs)
	if err != nil {
		s.logger.Error("Failed to fetch related data for TCAT export", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to fetch related data: %w", err)
	}

	report(export.StepMapping, "Mapping certificates to TCAT fields")

	byType := make(map[eac.CertificateType][]eac.Certificate)
	for _, c := range supported {
		byType[c.Type] = append(byType[c.Type], c)
	}

	groups := make([]typeGroup, 0, len(byType))
	for _, t := range SupportedTypes {
		if certs, ok := byType[t]; ok {
			groups = append(groups, typeGroup{certType: t, certificates: certs})
		}
	}

	return groups, newRelatedLookup(related), nil
}

// mapGroup maps every certificate of one type group and accumulates the
// group's overall vintage range.
func (s *Service) mapGroup(group typeGroup, related *relatedLookup) ([]*MappedData, *VintageRange, error) {
	mapped := make([]*MappedData, 0, len(group.certificates))
	var groupRange *VintageRange

	for _, cert := range group.certificates {
		m, err := MapCertificate(cert, related.source(cert.ProductionSourceID), related.events, related.organizations)
		if err != nil {
			s.logger.Error("Failed to map certificate",
				zap.String("certificate_id", cert.ID),
				zap.Error(err))
			return nil, nil, fmt.Errorf("failed to map certificate %q: %w", cert.ID, err)
		}
		mapped = append(mapped, m)

		if r, ok := productionVintage(cert.ID, related.events); ok {
			if groupRange == nil {
				copied := r
				groupRange = &copied
			} else {
				*groupRange = groupRange.Extend(r)
			}
		}
	}
	return mapped, groupRange, nil
}

// relatedLookup indexes fetched related data for per-certificate resolution
type relatedLookup struct {
	sourceByID    map[string]eac.ProductionSource
	events        []eac.Event
	organizations []eac.Organization
}

func newRelatedLookup(related *eac.RelatedData) *relatedLookup {
	lookup := &relatedLookup{
		sourceByID:    make(map[string]eac.ProductionSource, len(related.ProductionSources)),
		events:        related.Events,
		organizations: related.Organizations,
	}
	for _, ps := range related.ProductionSources {
		lookup.sourceByID[ps.ID] = ps
	}
	return lookup
}

func (l *relatedLookup) source(id string) *eac.ProductionSource {
	if id == "" {
		return nil
	}
	if ps, ok := l.sourceByID[id]; ok {
		return &ps
	}
	return nil
}

// tcatFileName names one per-type CSV by type code and the group's vintage
// date range. A group with no production dates at all is marked unknown.
func tcatFileName(t eac.CertificateType, r *VintageRange) string {
	vintage := "unknown"
	if r != nil {
		vintage = r.Start.Format(vintageDateLayout) + "-" + r.End.Format(vintageDateLayout)
	}
	return fmt.Sprintf("PEACH_%s_vintage-%s.csv", ShortTypeCode(t), vintage)
}

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

func progressReporter(onProgress export.ProgressFunc) func(step, message string) {
	return func(step, message string) {
		if onProgress != nil {
			onProgress(export.Progress{Step: step, Message: message})
		}
	}
}
