package tcat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func productionEvent(certID string, start time.Time, end *time.Time) eac.Event {
	return eac.Event{
		Target:   eac.TargetEAC,
		TargetID: certID,
		Type:     eac.EventTypeProduction,
		Dates:    eac.DateRangeValue{Start: start, End: end},
	}
}

func TestMapCertificateMissingID(t *testing.T) {
	_, err := MapCertificate(eac.Certificate{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestMapCertificateFull(t *testing.T) {
	operationStart := date(2015, time.June, 1)
	cert := eac.Certificate{
		ID:                 "cert-1",
		Type:               eac.CertificateTypeREC,
		ProductionSourceID: "ps-1",
		Amounts: eac.AmountList{
			{Amount: 5, Unit: "MWh"},
			{Amount: 100, Unit: "MWh", IsPrimary: true},
		},
		ExternalIDs: eac.ExternalIDList{{ID: "REG-42"}},
		Metadata: eac.MetadataList{
			{Key: "batch", Value: "B-7"},
		},
		Links: []string{"https://registry.example/cert-1"},
	}
	source := &eac.ProductionSource{
		ID:                 "ps-1",
		Name:               "Windpark Nord",
		Description:        "Onshore wind farm",
		Location:           eac.LocationValue{Region: "Schleswig-Holstein", Country: "Germany"},
		Technology:         eac.StringList{"Onshore Wind"},
		OperationStartDate: &operationStart,
		Labels:             eac.LabelList{{Label: "EKOenergy"}},
	}
	events := []eac.Event{
		productionEvent("cert-1", date(2023, time.January, 10), datePtr(2023, time.March, 20)),
		{
			Target:   eac.TargetEAC,
			TargetID: "cert-1",
			Type:     eac.EventTypeRedemption,
			Links:    []string{"https://registry.example/retirement/77"},
			Organizations: eac.OrgRoleList{
				{OrgID: "org-reg", Role: string(eac.RoleRegistry)},
				{OrgID: "org-ben", Role: string(eac.RoleEACBeneficiary)},
			},
		},
		{
			Target:   eac.TargetEAC,
			TargetID: "cert-1",
			Type:     eac.EventTypeVerification,
			Links:    []string{"https://verifier.example/report/9"},
			Organizations: eac.OrgRoleList{
				{OrgID: "org-ver", Role: string(eac.RoleMRVVerifier)},
			},
		},
	}
	organizations := []eac.Organization{
		{ID: "org-reg", Name: "Green Registry"},
		{ID: "org-ben", Name: "Acme Corp"},
		{ID: "org-ver", Name: "Veritas MRV"},
	}

	m, err := MapCertificate(cert, source, events, organizations)
	require.NoError(t, err)

	assert.Equal(t, "Windpark Nord", m.ProjectName)
	assert.Equal(t, "REG-42", m.ProjectID)
	assert.Equal(t, "Green Registry", m.Registry)
	assert.Equal(t, "https://registry.example/retirement/77", m.ProofOfRetirement)
	assert.Equal(t, "Onshore wind farm", m.ProjectDescription)
	assert.Equal(t, "100 MWh", m.Quantity)
	assert.Equal(t, "Q1 2023", m.Vintage)
	assert.Equal(t, "Schleswig-Holstein, Germany", m.Location)
	assert.Equal(t, "0 CO2e/MWh, applies to all RECs", m.MitigationInfo)
	assert.Equal(t, "2015", m.CommercialOperationYear)
	assert.Equal(t, "Onshore Wind", m.FuelAndTechnologyTypes)
	assert.Equal(t, "EKOenergy", m.Methodology)
	assert.Equal(t, "Acme Corp", m.EntityName)
	assert.Equal(t, "Veritas MRV", m.VerificationBody)
	assert.Equal(t, "https://verifier.example/report/9", m.VerificationReport)
	assert.Equal(t, "EKOenergy; batch: B-7", m.OtherInfo)
}

func TestMapCertificateMissingRelationships(t *testing.T) {
	cert := eac.Certificate{ID: "cert-1", Type: eac.CertificateTypeCC}

	m, err := MapCertificate(cert, nil, nil, nil)
	require.NoError(t, err)

	assert.Empty(t, m.ProjectName)
	assert.Empty(t, m.Registry)
	assert.Empty(t, m.Vintage)
	assert.Empty(t, m.MitigationInfo)
	assert.Empty(t, m.EntityName)
	assert.Empty(t, m.VerificationBody)
}

func TestMapCertificateIgnoresOtherCertificatesEvents(t *testing.T) {
	cert := eac.Certificate{ID: "cert-1", Type: eac.CertificateTypeCC}
	events := []eac.Event{
		{
			Target:   eac.TargetEAC,
			TargetID: "cert-2",
			Type:     eac.EventTypeRedemption,
			Organizations: eac.OrgRoleList{
				{OrgID: "org-reg", Role: string(eac.RoleRegistry)},
			},
		},
	}
	organizations := []eac.Organization{{ID: "org-reg", Name: "Other Registry"}}

	m, err := MapCertificate(cert, nil, events, organizations)
	require.NoError(t, err)
	assert.Empty(t, m.Registry)
}

func TestMapCertificatePrimaryAmountFallback(t *testing.T) {
	cert := eac.Certificate{
		ID:      "cert-1",
		Type:    eac.CertificateTypeCC,
		Amounts: eac.AmountList{{Amount: 10, Unit: "MWh"}},
	}

	m, err := MapCertificate(cert, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "10 MWh", m.Quantity)
}

func TestMapCertificateProofOfRetirementFallsBackToCertLinks(t *testing.T) {
	cert := eac.Certificate{
		ID:    "cert-1",
		Type:  eac.CertificateTypeSAF,
		Links: []string{"https://a.example", "https://b.example"},
	}

	m, err := MapCertificate(cert, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example; https://b.example", m.ProofOfRetirement)
}

func TestMapCertificateProjectIDFallsBackToSource(t *testing.T) {
	cert := eac.Certificate{ID: "cert-1", Type: eac.CertificateTypeCC}
	source := &eac.ProductionSource{ID: "ps-1", ExternalIDs: eac.ExternalIDList{{ID: "PS-EXT-9"}}}

	m, err := MapCertificate(cert, source, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "PS-EXT-9", m.ProjectID)
}

func TestMitigationInfoFromEmissions(t *testing.T) {
	cert := eac.Certificate{
		ID:        "cert-1",
		Type:      eac.CertificateTypeSAF,
		Amounts:   eac.AmountList{{Amount: 250, Unit: "t", IsPrimary: true}},
		Emissions: eac.EmissionList{{CarbonIntensity: 18.5, CIUnit: "gCO2e/MJ"}},
	}

	m, err := MapCertificate(cert, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "18.5 gCO2e/MJ, applies to 250 t", m.MitigationInfo)
}

func TestMitigationInfoWithoutAmountOmitsClause(t *testing.T) {
	cert := eac.Certificate{
		ID:        "cert-1",
		Type:      eac.CertificateTypeSAF,
		Emissions: eac.EmissionList{{CarbonIntensity: 18.5}},
	}

	m, err := MapCertificate(cert, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "18.5 CO2e/MWh", m.MitigationInfo)
}

func TestMethodologyFromMetadata(t *testing.T) {
	cert := eac.Certificate{
		ID:   "cert-1",
		Type: eac.CertificateTypeCC,
		Metadata: eac.MetadataList{
			{Key: "methodology", Value: "VM0042"},
			{Key: "crediting_period", Value: "2020-2030"},
		},
	}

	m, err := MapCertificate(cert, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "VM0042", m.Methodology)
	assert.Equal(t, "crediting_period: 2020-2030", m.OtherInfo)
}

func TestProductionVintage(t *testing.T) {
	events := []eac.Event{
		productionEvent("cert-1", date(2023, time.February, 1), nil),
		productionEvent("cert-1", date(2022, time.November, 15), datePtr(2023, time.January, 5)),
		productionEvent("cert-2", date(2020, time.January, 1), nil),
	}

	r, ok := productionVintage("cert-1", events)
	require.True(t, ok)
	assert.Equal(t, date(2022, time.November, 15), r.Start)
	assert.Equal(t, date(2023, time.February, 1), r.End)

	_, ok = productionVintage("cert-3", events)
	assert.False(t, ok)
}

func TestFormatVintage(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  string
	}{
		{"single quarter", date(2023, time.January, 10), date(2023, time.March, 20), "Q1 2023"},
		{"same year span", date(2023, time.January, 1), date(2023, time.September, 30), "Q1-Q3 2023"},
		{"cross year span", date(2022, time.December, 1), date(2023, time.February, 1), "Q4 2022 - Q1 2023"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVintage(VintageRange{Start: tt.start, End: tt.end}))
		})
	}
}

func TestVintageRangeExtend(t *testing.T) {
	a := VintageRange{Start: date(2023, time.March, 1), End: date(2023, time.June, 1)}
	b := VintageRange{Start: date(2023, time.January, 1), End: date(2023, time.April, 1)}

	r := a.Extend(b)
	assert.Equal(t, date(2023, time.January, 1), r.Start)
	assert.Equal(t, date(2023, time.June, 1), r.End)
}
