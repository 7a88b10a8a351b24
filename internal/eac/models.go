package eac

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// =====================================================
// Enums and Constants
// =====================================================

// CertificateType represents the kind of energy attribute certificate
type CertificateType string

const (
	CertificateTypeREC CertificateType = "REC"
	CertificateTypeRTC CertificateType = "RTC"
	CertificateTypeRNG CertificateType = "RNG"
	CertificateTypeSAF CertificateType = "SAF"
	CertificateTypeCC  CertificateType = "CC"
	CertificateTypeCR  CertificateType = "CR"
)

// Name returns the human-readable label for the certificate type
func (t CertificateType) Name() string {
	switch t {
	case CertificateTypeREC:
		return "Renewable Energy Certificate"
	case CertificateTypeRTC:
		return "Renewable Thermal Certificate"
	case CertificateTypeRNG:
		return "Renewable Natural Gas"
	case CertificateTypeSAF:
		return "Sustainable Aviation Fuel"
	case CertificateTypeCC:
		return "Carbon Credit"
	case CertificateTypeCR:
		return "Carbon Removal"
	default:
		return string(t)
	}
}

// EventTarget represents the entity kind an event is attached to
type EventTarget string

const (
	TargetEAC     EventTarget = "EAC"
	TargetPSource EventTarget = "PSOURCE"
	TargetProduct EventTarget = "PRODUCT"
)

// Name returns the human-readable label for the event target
func (t EventTarget) Name() string {
	switch t {
	case TargetEAC:
		return "Certificate"
	case TargetPSource:
		return "Production Source"
	case TargetProduct:
		return "Product"
	default:
		return string(t)
	}
}

// EventType is the conventional event vocabulary. Event types are stored as
// free text; matching is exact, with no case folding or synonyms.
type EventType string

const (
	EventTypeProduction   EventType = "PRODUCTION"
	EventTypeIssuance     EventType = "ISSUANCE"
	EventTypeRedemption   EventType = "REDEMPTION"
	EventTypeVerification EventType = "VERIFICATION"
	EventTypeActivation   EventType = "ACTIVATION"
	EventTypeMRVLabeling  EventType = "MRVLABELING"
	EventTypeMRVRating    EventType = "MRVRATING"
)

// OrgRole is the conventional organization role vocabulary used on events
// and production sources. Stored as free text, matched exactly.
type OrgRole string

const (
	RoleRegistry       OrgRole = "REGISTRY"
	RoleSeller         OrgRole = "SELLER"
	RoleMRVVerifier    OrgRole = "MRV_VERIFIER"
	RoleRatingAgency   OrgRole = "RATING_AGENCY"
	RoleEACBeneficiary OrgRole = "EACBENEFICIARY"
	RoleOther          OrgRole = "OTHER"
)

// =====================================================
// Embedded value types (JSONB columns)
// =====================================================

// Amount is one quantity entry on a certificate. At most one entry per
// certificate should be marked primary.
type Amount struct {
	Amount    float64 `json:"amount"`
	Unit      string  `json:"unit"`
	IsPrimary bool    `json:"is_primary,omitempty"`
}

// Display renders the amount as "{amount} {unit}".
func (a Amount) Display() string {
	return strings.TrimSpace(FormatNumber(a.Amount) + " " + a.Unit)
}

// Emission is one emission-rate entry on a certificate
type Emission struct {
	CarbonIntensity float64 `json:"carbon_intensity"`
	CIUnit          string  `json:"ci_unit,omitempty"`
	EmissionsFactor float64 `json:"emissions_factor"`
	EFUnit          string  `json:"ef_unit,omitempty"`
}

// ExternalID is a registry-specific identifier attached to an entity
type ExternalID struct {
	ID                string `json:"id"`
	ExternalFieldName string `json:"external_field_name,omitempty"`
	Description       string `json:"description,omitempty"`
}

// MetadataEntry is a free-form key/value annotation
type MetadataEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Label is a classification tag on a production source, optionally carrying
// a value (e.g. a methodology revision)
type Label struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

// Location is a structured place reference. All parts are optional.
type Location struct {
	Country     string `json:"country,omitempty"`
	Region      string `json:"region,omitempty"`
	Subdivision string `json:"subdivision,omitempty"`
	Address     string `json:"address,omitempty"`
}

// Summary joins the non-empty location parts, most specific first.
func (l Location) Summary() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{l.Address, l.Subdivision, l.Region, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// OrganizationRole links an organization to an event or production source
// under a given role
type OrganizationRole struct {
	OrgID   string `json:"org_id"`
	Role    string `json:"role"`
	OrgName string `json:"org_name,omitempty"`
}

// DateRange is an event's validity window. End is open-ended when nil.
type DateRange struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// =====================================================
// JSONB column wrappers
// =====================================================

func jsonValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonScan(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("type assertion to []byte failed")
	}
	return json.Unmarshal(b, dest)
}

// AmountList is a JSONB array of amounts
type AmountList []Amount

func (l AmountList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *AmountList) Scan(value interface{}) error { return jsonScan(l, value) }

// EmissionList is a JSONB array of emission entries
type EmissionList []Emission

func (l EmissionList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *EmissionList) Scan(value interface{}) error { return jsonScan(l, value) }

// ExternalIDList is a JSONB array of external identifiers
type ExternalIDList []ExternalID

func (l ExternalIDList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *ExternalIDList) Scan(value interface{}) error { return jsonScan(l, value) }

// MetadataList is a JSONB array of metadata entries
type MetadataList []MetadataEntry

func (l MetadataList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *MetadataList) Scan(value interface{}) error { return jsonScan(l, value) }

// LabelList is a JSONB array of labels
type LabelList []Label

func (l LabelList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *LabelList) Scan(value interface{}) error { return jsonScan(l, value) }

// OrgRoleList is a JSONB array of organization roles
type OrgRoleList []OrganizationRole

func (l OrgRoleList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *OrgRoleList) Scan(value interface{}) error { return jsonScan(l, value) }

// LocationList is a JSONB array of locations
type LocationList []Location

func (l LocationList) Value() (driver.Value, error)  { return jsonValue(l) }
func (l *LocationList) Scan(value interface{}) error { return jsonScan(l, value) }

// LocationValue is a single JSONB location column
type LocationValue Location

func (l LocationValue) Value() (driver.Value, error)  { return jsonValue(Location(l)) }
func (l *LocationValue) Scan(value interface{}) error { return jsonScan(l, value) }

// DateRangeValue is a single JSONB date-range column
type DateRangeValue DateRange

func (d DateRangeValue) Value() (driver.Value, error)  { return jsonValue(DateRange(d)) }
func (d *DateRangeValue) Scan(value interface{}) error { return jsonScan(d, value) }

// StringList tolerates records that store a single string where an array is
// expected (older production sources carry a bare technology string)
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*l = nil
	} else {
		*l = StringList{one}
	}
	return nil
}

func (l StringList) Value() (driver.Value, error)  { return jsonValue([]string(l)) }
func (l *StringList) Scan(value interface{}) error { return jsonScan(l, value) }

// =====================================================
// Entities
// =====================================================

// Certificate is one energy attribute certificate record. Entities are
// read-only snapshots for the duration of an export call.
type Certificate struct {
	ID                 string          `json:"id" db:"id"`
	Type               CertificateType `json:"type" db:"type"`
	Amounts            AmountList      `json:"amounts" db:"amounts"`
	Emissions          EmissionList    `json:"emissions" db:"emissions"`
	ExternalIDs        ExternalIDList  `json:"external_ids" db:"external_ids"`
	Metadata           MetadataList    `json:"metadata" db:"metadata"`
	Links              pq.StringArray  `json:"links" db:"links"`
	ProductionSourceID string          `json:"production_source_id" db:"production_source_id"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// PrimaryAmount returns the amount flagged primary, falling back to the
// first amount when none is flagged. The second return is false when the
// certificate has no amounts at all.
func (c Certificate) PrimaryAmount() (Amount, bool) {
	for _, a := range c.Amounts {
		if a.IsPrimary {
			return a, true
		}
	}
	if len(c.Amounts) > 0 {
		return c.Amounts[0], true
	}
	return Amount{}, false
}

// ProductionSource is the facility a certificate was produced by
type ProductionSource struct {
	ID                 string         `json:"id" db:"id"`
	Name               string         `json:"name" db:"name"`
	Description        string         `json:"description" db:"description"`
	Location           LocationValue  `json:"location" db:"location"`
	Technology         StringList     `json:"technology" db:"technology"`
	Organizations      OrgRoleList    `json:"organizations" db:"organizations"`
	ExternalIDs        ExternalIDList `json:"external_ids" db:"external_ids"`
	Labels             LabelList      `json:"labels" db:"labels"`
	RelatedSources     pq.StringArray `json:"related_sources" db:"related_sources"`
	OperationStartDate *time.Time     `json:"operation_start_date" db:"operation_start_date"`
}

// Event is a lifecycle event attached to a certificate or production source
// via target + target_id
type Event struct {
	ID            string         `json:"id" db:"id"`
	Target        EventTarget    `json:"target" db:"target"`
	TargetID      string         `json:"target_id" db:"target_id"`
	Type          EventType      `json:"type" db:"type"`
	Dates         DateRangeValue `json:"dates" db:"dates"`
	Location      LocationValue  `json:"location" db:"location"`
	Organizations OrgRoleList    `json:"organizations" db:"organizations"`
	Links         pq.StringArray `json:"links" db:"links"`
	Metadata      MetadataList   `json:"metadata" db:"metadata"`
	Notes         string         `json:"notes" db:"notes"`
}

// Organization is a registry, verifier, beneficiary or other counterparty
type Organization struct {
	ID          string         `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	ExternalIDs ExternalIDList `json:"external_ids" db:"external_ids"`
	Locations   LocationList   `json:"location" db:"location"`
}

// RelatedData bundles the entity collections referenced by a certificate
// batch, as returned by the injected data-access capability
type RelatedData struct {
	ProductionSources []ProductionSource `json:"production_sources"`
	Events            []Event            `json:"events"`
	Organizations     []Organization     `json:"organizations"`
}

// FormatNumber renders a float without a fixed precision ("10", "1.5")
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
