package export

import (
	"strings"
	"time"

	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
)

const dateLayout = "2006-01-02"

// The formatters flatten each entity and add derived human-readable columns.
// Derived columns are additive: the raw flattened columns stay in the row,
// so both appear in the exported header set.

// FormatCertificates formats certificates into flattened export rows
func FormatCertificates(certs []eac.Certificate) []Row {
	rows := make([]Row, 0, len(certs))
	for _, c := range certs {
		row := Flatten(c, "")
		row["type_name"] = c.Type.Name()
		row["amounts_summary"] = amountsSummary(c.Amounts)
		row["emissions_summary"] = emissionsSummary(c.Emissions)
		rows = append(rows, row)
	}
	return rows
}

// FormatEvents formats events into flattened export rows
func FormatEvents(events []eac.Event) []Row {
	rows := make([]Row, 0, len(events))
	for _, e := range events {
		row := Flatten(e, "")
		row["target_name"] = e.Target.Name()
		row["start_date"] = formatDate(e.Dates.Start)
		if e.Dates.End != nil {
			row["end_date"] = formatDate(*e.Dates.End)
		} else {
			row["end_date"] = ""
		}
		row["organizations_summary"] = organizationsSummary(e.Organizations)
		row["location_summary"] = eac.Location(e.Location).Summary()
		rows = append(rows, row)
	}
	return rows
}

// FormatOrganizations formats organizations into flattened export rows
func FormatOrganizations(orgs []eac.Organization) []Row {
	rows := make([]Row, 0, len(orgs))
	for _, o := range orgs {
		row := Flatten(o, "")
		row["locations_summary"] = locationsSummary(o.Locations)
		row["external_ids_summary"] = externalIDsSummary(o.ExternalIDs)
		rows = append(rows, row)
	}
	return rows
}

// FormatProductionSources formats production sources into flattened export rows
func FormatProductionSources(sources []eac.ProductionSource) []Row {
	rows := make([]Row, 0, len(sources))
	for _, s := range sources {
		row := Flatten(s, "")
		row["location_summary"] = eac.Location(s.Location).Summary()
		row["organizations_summary"] = organizationsSummary(s.Organizations)
		row["external_ids_summary"] = externalIDsSummary(s.ExternalIDs)
		row["related_sources_summary"] = strings.Join(s.RelatedSources, "; ")
		rows = append(rows, row)
	}
	return rows
}

func amountsSummary(amounts eac.AmountList) string {
	parts := make([]string, 0, len(amounts))
	for _, a := range amounts {
		part := a.Display()
		if a.IsPrimary {
			part += " (Primary)"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

func emissionsSummary(emissions eac.EmissionList) string {
	parts := make([]string, 0, len(emissions))
	for _, e := range emissions {
		parts = append(parts, "CI: "+eac.FormatNumber(e.CarbonIntensity)+" "+e.CIUnit+
			", EF: "+eac.FormatNumber(e.EmissionsFactor)+" "+e.EFUnit)
	}
	return strings.Join(parts, "; ")
}

func organizationsSummary(roles eac.OrgRoleList) string {
	parts := make([]string, 0, len(roles))
	for _, r := range roles {
		name := r.OrgName
		if name == "" {
			name = r.OrgID
		}
		parts = append(parts, name+" ("+r.Role+")")
	}
	return strings.Join(parts, "; ")
}

func locationsSummary(locations eac.LocationList) string {
	parts := make([]string, 0, len(locations))
	for _, l := range locations {
		parts = append(parts, l.Summary())
	}
	return strings.Join(parts, "; ")
}

func externalIDsSummary(ids eac.ExternalIDList) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		name := id.ExternalFieldName
		if name == "" {
			name = "ID"
		}
		part := name + ": " + id.ID
		if id.Description != "" {
			part += " (" + id.Description + ")"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "; ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
