package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
)

// MockFetcher is a mock implementation of the related-data capability
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, certificateIDs, productionSourceIDs []string) (*eac.RelatedData, error) {
	args := m.Called(ctx, certificateIDs, productionSourceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eac.RelatedData), args.Error(1)
}

func newTestService() *Service {
	s := NewService(zap.NewNop())
	s.now = func() time.Time {
		return time.Date(2024, 3, 5, 14, 30, 45, 0, time.UTC)
	}
	return s
}

func TestExportCSVEmptyData(t *testing.T) {
	s := newTestService()

	file, err := s.ExportCSV(EntityCertificates, []eac.Certificate{}, false)

	assert.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, file)
}

func TestExportCSVFilename(t *testing.T) {
	s := newTestService()
	certs := []eac.Certificate{{ID: "cert-1", Type: eac.CertificateTypeREC}}

	file, err := s.ExportCSV(EntityCertificates, certs, false)
	require.NoError(t, err)
	assert.Equal(t, "eacertificates_2024-03-05_14-30-45.csv", file.Name)

	filtered, err := s.ExportCSV(EntityCertificates, certs, true)
	require.NoError(t, err)
	assert.Equal(t, "eacertificates_filtered_2024-03-05_14-30-45.csv", filtered.Name)
}

func TestExportCSVWrongDataType(t *testing.T) {
	s := newTestService()

	_, err := s.ExportCSV(EntityCertificates, []eac.Event{{ID: "ev-1"}}, false)
	assert.Error(t, err)

	_, err = s.ExportCSV(EntityType("widgets"), []eac.Certificate{{ID: "c"}}, false)
	assert.Error(t, err)
}

func TestExportRelatedZip(t *testing.T) {
	s := newTestService()

	certs := []eac.Certificate{
		{ID: "cert-1", Type: eac.CertificateTypeREC, ProductionSourceID: "ps-1"},
		{ID: "cert-2", Type: eac.CertificateTypeCC, ProductionSourceID: "ps-1"},
		{ID: "cert-1", Type: eac.CertificateTypeREC}, // duplicate ID, no source
	}

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, []string{"cert-1", "cert-2"}, []string{"ps-1"}).
		Return(&eac.RelatedData{
			ProductionSources: []eac.ProductionSource{{ID: "ps-1", Name: "Windpark"}},
			Events:            []eac.Event{{ID: "ev-1", Target: eac.TargetEAC, TargetID: "cert-1", Type: eac.EventTypeProduction}},
		}, nil)

	var steps []string
	file, err := s.ExportRelatedZip(context.Background(), certs, fetcher.Fetch, func(p Progress) {
		steps = append(steps, p.Step)
	})
	require.NoError(t, err)
	fetcher.AssertExpectations(t)

	assert.Equal(t, "eac_export_2024-03-05_14-30-45.zip", file.Name)
	assert.Equal(t, []string{StepCollecting, StepGenerating, StepZipping, StepDownloading}, steps)

	names := zipFileNames(t, file.Content)
	assert.ElementsMatch(t, []string{
		"eacertificates_2024-03-05_14-30-45.csv",
		"production_sources_2024-03-05_14-30-45.csv",
		"events_2024-03-05_14-30-45.csv",
	}, names)
}

func TestExportRelatedZipEmptyBatch(t *testing.T) {
	s := newTestService()

	_, err := s.ExportRelatedZip(context.Background(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestExportRelatedZipFetchErrorPropagates(t *testing.T) {
	s := newTestService()
	fetchErr := errors.New("connection refused")

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(nil, fetchErr)

	_, err := s.ExportRelatedZip(context.Background(), []eac.Certificate{{ID: "cert-1"}}, fetcher.Fetch, nil)
	assert.ErrorIs(t, err, fetchErr)
}

func TestExportRelatedWorkbook(t *testing.T) {
	s := newTestService()

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, []string{"cert-1"}, mock.Anything).
		Return(&eac.RelatedData{}, nil)

	file, err := s.ExportRelatedWorkbook(context.Background(), []eac.Certificate{{ID: "cert-1", Type: eac.CertificateTypeREC}}, fetcher.Fetch, nil)
	require.NoError(t, err)

	assert.Equal(t, "eac_export_2024-03-05_14-30-45.xlsx", file.Name)
	assert.NotEmpty(t, file.Content)
}

func TestZipCSVsShareTimestampAndParse(t *testing.T) {
	s := newTestService()

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything).Return(&eac.RelatedData{}, nil)

	certs := []eac.Certificate{{
		ID:      "cert-1",
		Type:    eac.CertificateTypeREC,
		Amounts: eac.AmountList{{Amount: 10, Unit: "MWh", IsPrimary: true}},
	}}

	file, err := s.ExportRelatedZip(context.Background(), certs, fetcher.Fetch, nil)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(file.Content), int64(len(file.Content)))
	require.NoError(t, err)
	require.Len(t, reader.File, 1)

	rc, err := reader.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)

	lines := strings.Split(string(content), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Amounts Summary")
}

func zipFileNames(t *testing.T, content []byte) []string {
	t.Helper()
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	return names
}
