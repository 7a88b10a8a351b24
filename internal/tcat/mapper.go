package tcat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
)

// MappedData is one certificate's TCAT record: exactly the 16 semantic
// disclosure fields, every one a (possibly empty) string. The mapper is
// total over missing relationships; only a malformed certificate is an
// error.
type MappedData struct {
	ProjectName             string `json:"projectName"`
	ProjectID               string `json:"projectId"`
	Registry                string `json:"registry"`
	ProofOfRetirement       string `json:"proofOfRetirement"`
	ProjectDescription      string `json:"projectDescription"`
	Quantity                string `json:"quantity"`
	Vintage                 string `json:"vintage"`
	Location                string `json:"location"`
	MitigationInfo          string `json:"mitigationInfo"`
	CommercialOperationYear string `json:"commercialOperationYear"`
	FuelAndTechnologyTypes  string `json:"fuelAndTechnologyTypes"`
	Methodology             string `json:"methodology"`
	EntityName              string `json:"entityName"`
	VerificationBody        string `json:"verificationBody"`
	VerificationReport      string `json:"verificationReport"`
	OtherInfo               string `json:"otherInfo"`
}

// FieldValue returns the value of a semantic field by its schema identifier
func (m *MappedData) FieldValue(field string) string {
	switch field {
	case FieldProjectName:
		return m.ProjectName
	case FieldProjectID:
		return m.ProjectID
	case FieldRegistry:
		return m.Registry
	case FieldProofOfRetirement:
		return m.ProofOfRetirement
	case FieldProjectDescription:
		return m.ProjectDescription
	case FieldQuantity:
		return m.Quantity
	case FieldVintage:
		return m.Vintage
	case FieldLocation:
		return m.Location
	case FieldMitigationInfo:
		return m.MitigationInfo
	case FieldCommercialOperationYear:
		return m.CommercialOperationYear
	case FieldFuelAndTechnologyTypes:
		return m.FuelAndTechnologyTypes
	case FieldMethodology:
		return m.Methodology
	case FieldEntityName:
		return m.EntityName
	case FieldVerificationBody:
		return m.VerificationBody
	case FieldVerificationReport:
		return m.VerificationReport
	case FieldOtherInfo:
		return m.OtherInfo
	default:
		return ""
	}
}

// VintageRange is the [min, max] span of production dates backing a
// certificate or a type group
type VintageRange struct {
	Start time.Time
	End   time.Time
}

// Extend widens the range to cover another range
func (r VintageRange) Extend(other VintageRange) VintageRange {
	if other.Start.Before(r.Start) {
		r.Start = other.Start
	}
	if other.End.After(r.End) {
		r.End = other.End
	}
	return r
}

// MapCertificate joins one certificate to its production source, events and
// organizations and populates the 16-field TCAT record. Missing optional
// relationships always resolve to empty strings.
func MapCertificate(cert eac.Certificate, source *eac.ProductionSource, events []eac.Event, organizations []eac.Organization) (*MappedData, error) {
	if cert.ID == "" {
		return nil, fmt.Errorf("certificate missing id")
	}

	// Typed lookups, built once per call: organizations by ID, and the
	// certificate's own events. Role scans never consider a neighbouring
	// certificate's events.
	orgByID := make(map[string]eac.Organization, len(organizations))
	for _, o := range organizations {
		orgByID[o.ID] = o
	}
	certEvents := certificateEvents(cert.ID, events)

	m := &MappedData{}

	if source != nil {
		m.ProjectName = source.Name
		m.ProjectDescription = source.Description
		m.Location = joinNonEmpty(", ", source.Location.Region, source.Location.Country)
		m.FuelAndTechnologyTypes = strings.Join(source.Technology, ", ")
		if source.OperationStartDate != nil {
			m.CommercialOperationYear = strconv.Itoa(source.OperationStartDate.Year())
		}
	}

	if amount, ok := cert.PrimaryAmount(); ok {
		m.Quantity = amount.Display()
	}

	if r, ok := productionVintage(cert.ID, events); ok {
		m.Vintage = formatVintage(r)
	}

	m.Registry = resolveOrgName(certEvents, eac.EventTypeRedemption, eac.RoleRegistry, orgByID)
	m.EntityName = resolveOrgName(certEvents, "", eac.RoleEACBeneficiary, orgByID)
	m.VerificationBody = resolveOrgName(certEvents, eac.EventTypeVerification, eac.RoleMRVVerifier, orgByID)

	m.ProofOfRetirement = firstEventLinks(certEvents, eac.EventTypeRedemption)
	if m.ProofOfRetirement == "" {
		m.ProofOfRetirement = strings.Join(cert.Links, "; ")
	}
	m.VerificationReport = firstEventLinks(certEvents, eac.EventTypeVerification)

	m.ProjectID = resolveProjectID(cert, source)
	m.MitigationInfo = mitigationInfo(cert)
	m.Methodology = resolveMethodology(cert, source)
	m.OtherInfo = otherInfo(cert, source)

	return m, nil
}

func certificateEvents(certID string, events []eac.Event) []eac.Event {
	matched := make([]eac.Event, 0, len(events))
	for _, e := range events {
		if e.Target == eac.TargetEAC && e.TargetID == certID {
			matched = append(matched, e)
		}
	}
	return matched
}

// resolveOrgName finds an organization-role entry with the given role on the
// certificate's events (optionally restricted by event type) and resolves
// the organization by ID. An unresolvable chain is never an error.
func resolveOrgName(events []eac.Event, eventType eac.EventType, role eac.OrgRole, orgByID map[string]eac.Organization) string {
	for _, e := range events {
		if eventType != "" && e.Type != eventType {
			continue
		}
		for _, r := range e.Organizations {
			if r.Role != string(role) {
				continue
			}
			if org, ok := orgByID[r.OrgID]; ok {
				return org.Name
			}
		}
	}
	return ""
}

func firstEventLinks(events []eac.Event, eventType eac.EventType) string {
	for _, e := range events {
		if e.Type == eventType && len(e.Links) > 0 {
			return strings.Join(e.Links, "; ")
		}
	}
	return ""
}

// productionVintage collects the dates of the certificate's PRODUCTION
// events into a [min, max] range. ok is false when no production dates
// exist.
func productionVintage(certID string, events []eac.Event) (VintageRange, bool) {
	var r VintageRange
	found := false

	extend := func(t time.Time) {
		if t.IsZero() {
			return
		}
		if !found {
			r = VintageRange{Start: t, End: t}
			found = true
			return
		}
		if t.Before(r.Start) {
			r.Start = t
		}
		if t.After(r.End) {
			r.End = t
		}
	}

	for _, e := range events {
		if e.Type != eac.EventTypeProduction || e.TargetID != certID {
			continue
		}
		extend(e.Dates.Start)
		if e.Dates.End != nil {
			extend(*e.Dates.End)
		}
	}
	return r, found
}

// formatVintage renders a vintage range by calendar quarter:
// "Q1 2023", "Q1-Q3 2023" or "Q4 2022 - Q1 2023".
func formatVintage(r VintageRange) string {
	q1, y1 := quarter(r.Start)
	q2, y2 := quarter(r.End)

	switch {
	case y1 == y2 && q1 == q2:
		return fmt.Sprintf("Q%d %d", q1, y1)
	case y1 == y2:
		return fmt.Sprintf("Q%d-Q%d %d", q1, q2, y1)
	default:
		return fmt.Sprintf("Q%d %d - Q%d %d", q1, y1, q2, y2)
	}
}

func quarter(t time.Time) (int, int) {
	return (int(t.Month())-1)/3 + 1, t.Year()
}

func resolveProjectID(cert eac.Certificate, source *eac.ProductionSource) string {
	if len(cert.ExternalIDs) > 0 {
		return cert.ExternalIDs[0].ID
	}
	if source != nil && len(source.ExternalIDs) > 0 {
		return source.ExternalIDs[0].ID
	}
	return ""
}

func mitigationInfo(cert eac.Certificate) string {
	if len(cert.Emissions) > 0 {
		em := cert.Emissions[0]
		unit := em.CIUnit
		if unit == "" {
			unit = "CO2e/MWh"
		}
		rate := eac.FormatNumber(em.CarbonIntensity) + " " + unit
		if amount, ok := cert.PrimaryAmount(); ok {
			return rate + ", applies to " + amount.Display()
		}
		return rate
	}
	if cert.Type == eac.CertificateTypeREC {
		return "0 CO2e/MWh, applies to all RECs"
	}
	return ""
}

func resolveMethodology(cert eac.Certificate, source *eac.ProductionSource) string {
	if source != nil && len(source.Labels) > 0 {
		names := make([]string, 0, len(source.Labels))
		for _, l := range source.Labels {
			names = append(names, l.Label)
		}
		return strings.Join(names, ", ")
	}
	for _, entry := range cert.Metadata {
		if entry.Key == "methodology" {
			return entry.Value
		}
	}
	return ""
}

// otherInfo renders all production-source labels plus every certificate
// metadata entry except the methodology one.
func otherInfo(cert eac.Certificate, source *eac.ProductionSource) string {
	parts := []string{}
	if source != nil {
		for _, l := range source.Labels {
			if l.Value != "" {
				parts = append(parts, l.Label+": "+l.Value)
			} else {
				parts = append(parts, l.Label)
			}
		}
	}
	for _, entry := range cert.Metadata {
		if entry.Key == "methodology" {
			continue
		}
		parts = append(parts, entry.Key+": "+entry.Value)
	}
	return strings.Join(parts, "; ")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
