// Package tcat produces the transposed TCAT disclosure template export: one
// column per reported project, one row per lettered disclosure field.
package tcat

import (
	"github.com/zerolabsgreen/PEACH-DemoApp-sub000/internal/eac"
)

// FieldDefinition describes one lettered disclosure field (A through P)
type FieldDefinition struct {
	Key         string `json:"key"`
	Field       string `json:"field"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Semantic field identifiers, in template order A..P
const (
	FieldProjectName             = "projectName"
	FieldProjectID               = "projectId"
	FieldRegistry                = "registry"
	FieldProofOfRetirement       = "proofOfRetirement"
	FieldProjectDescription      = "projectDescription"
	FieldQuantity                = "quantity"
	FieldVintage                 = "vintage"
	FieldLocation                = "location"
	FieldMitigationInfo          = "mitigationInfo"
	FieldCommercialOperationYear = "commercialOperationYear"
	FieldFuelAndTechnologyTypes  = "fuelAndTechnologyTypes"
	FieldMethodology             = "methodology"
	FieldEntityName              = "entityName"
	FieldVerificationBody        = "verificationBody"
	FieldVerificationReport      = "verificationReport"
	FieldOtherInfo               = "otherInfo"
)

var fieldOrder = []struct {
	key   string
	field string
	label string
}{
	{"A", FieldProjectName, "Project Name"},
	{"B", FieldProjectID, "Project ID"},
	{"C", FieldRegistry, "Registry"},
	{"D", FieldProofOfRetirement, "Proof of Retirement"},
	{"E", FieldProjectDescription, "Project Description"},
	{"F", FieldQuantity, "Quantity"},
	{"G", FieldVintage, "Vintage"},
	{"H", FieldLocation, "Location"},
	{"I", FieldMitigationInfo, "Mitigation Information"},
	{"J", FieldCommercialOperationYear, "Commercial Operation Year"},
	{"K", FieldFuelAndTechnologyTypes, "Fuel and Technology Types"},
	{"L", FieldMethodology, "Methodology"},
	{"M", FieldEntityName, "Entity Name"},
	{"N", FieldVerificationBody, "Verification Body"},
	{"O", FieldVerificationReport, "Verification Report"},
	{"P", FieldOtherInfo, "Other Information"},
}

var commonDescriptions = map[string]string{
	FieldProjectName:             "Name of the project or facility the certificates were issued for",
	FieldProjectID:               "Identifier of the project in the issuing registry",
	FieldRegistry:                "Registry or issuing body that tracked the retirement",
	FieldProofOfRetirement:       "Link to the public retirement record",
	FieldProjectDescription:      "Short description of the project and its activity",
	FieldQuantity:                "Quantity retired, with unit",
	FieldVintage:                 "Period during which the underlying attribute was produced",
	FieldLocation:                "Region and country of the project",
	FieldMitigationInfo:          "Emission rate associated with the retired quantity",
	FieldCommercialOperationYear: "Year the facility began commercial operation",
	FieldFuelAndTechnologyTypes:  "Fuel and technology types of the facility",
	FieldMethodology:             "Methodology or standard the project was developed under",
	FieldEntityName:              "Entity claiming the environmental attribute",
	FieldVerificationBody:        "Independent body that verified the claim",
	FieldVerificationReport:      "Link to the verification report",
	FieldOtherInfo:               "Additional labels and metadata disclosed for the project",
}

var typeDescriptions = map[eac.CertificateType]map[string]string{
	eac.CertificateTypeREC: {
		FieldProjectName:             "Name of the renewable generation facility the RECs were issued for",
		FieldProjectID:               "Facility or device ID in the issuing REC registry",
		FieldRegistry:                "REC tracking system that recorded the retirement",
		FieldProofOfRetirement:       "Link to the REC retirement statement",
		FieldProjectDescription:      "Description of the generation facility",
		FieldQuantity:                "MWh of renewable electricity retired",
		FieldVintage:                 "Generation period of the retired MWh",
		FieldLocation:                "Region and country of the generation facility",
		FieldMitigationInfo:          "Emission rate of the generation; zero for renewable generation",
		FieldCommercialOperationYear: "Year the generation facility came online",
		FieldFuelAndTechnologyTypes:  "Generation fuel and technology (e.g. solar PV, onshore wind)",
		FieldMethodology:             "Certification standard or label the RECs carry",
		FieldEntityName:              "Entity making the renewable electricity claim",
		FieldVerificationBody:        "Body that verified the generation data",
		FieldVerificationReport:      "Link to the generation verification report",
		FieldOtherInfo:               "Additional facility labels and certificate metadata",
	},
	eac.CertificateTypeRTC: {
		FieldProjectName:             "Name of the thermal generation facility the RTCs were issued for",
		FieldProjectID:               "Facility ID in the issuing thermal certificate registry",
		FieldRegistry:                "Thermal certificate registry that recorded the retirement",
		FieldProofOfRetirement:       "Link to the RTC retirement statement",
		FieldProjectDescription:      "Description of the thermal energy facility",
		FieldQuantity:                "Thermal energy retired, with unit (e.g. MMBtu, MWh-th)",
		FieldVintage:                 "Production period of the retired thermal energy",
		FieldLocation:                "Region and country of the thermal facility",
		FieldMitigationInfo:          "Emission rate of the thermal production",
		FieldCommercialOperationYear: "Year the thermal facility came online",
		FieldFuelAndTechnologyTypes:  "Thermal fuel and technology (e.g. geothermal, biomass boiler)",
		FieldMethodology:             "Certification standard the RTCs carry",
		FieldEntityName:              "Entity making the renewable thermal claim",
		FieldVerificationBody:        "Body that verified the thermal production data",
		FieldVerificationReport:      "Link to the production verification report",
		FieldOtherInfo:               "Additional facility labels and certificate metadata",
	},
	eac.CertificateTypeSAF: {
		FieldProjectName:             "Name of the fuel production facility the SAF certificates cover",
		FieldProjectID:               "Batch or facility ID in the SAF certificate registry",
		FieldRegistry:                "SAF certificate registry that recorded the retirement",
		FieldProofOfRetirement:       "Link to the SAF certificate retirement record",
		FieldProjectDescription:      "Description of the sustainable aviation fuel pathway",
		FieldQuantity:                "Volume or energy of SAF retired, with unit",
		FieldVintage:                 "Production period of the retired fuel batch",
		FieldLocation:                "Region and country of the fuel production facility",
		FieldMitigationInfo:          "Lifecycle carbon intensity of the fuel batch",
		FieldCommercialOperationYear: "Year the fuel production facility came online",
		FieldFuelAndTechnologyTypes:  "Feedstock and conversion pathway of the fuel",
		FieldMethodology:             "Sustainability scheme the fuel is certified under",
		FieldEntityName:              "Entity claiming the SAF emission reduction",
		FieldVerificationBody:        "Body that verified the fuel batch data",
		FieldVerificationReport:      "Link to the batch verification report",
		FieldOtherInfo:               "Additional pathway labels and certificate metadata",
	},
	eac.CertificateTypeCC: {
		FieldProjectName:             "Name of the mitigation project the credits were issued for",
		FieldProjectID:               "Project ID in the issuing carbon registry",
		FieldRegistry:                "Carbon registry that recorded the retirement",
		FieldProofOfRetirement:       "Link to the public credit retirement record",
		FieldProjectDescription:      "Description of the mitigation activity",
		FieldQuantity:                "Tonnes of CO2e retired",
		FieldVintage:                 "Period during which the emission reductions occurred",
		FieldLocation:                "Region and country of the mitigation project",
		FieldMitigationInfo:          "Emission reduction or removal rate represented by the credits",
		FieldCommercialOperationYear: "Year the project started operating",
		FieldFuelAndTechnologyTypes:  "Project type and technology",
		FieldMethodology:             "Crediting methodology the project was validated against",
		FieldEntityName:              "Entity claiming the offset",
		FieldVerificationBody:        "Validation and verification body for the crediting period",
		FieldVerificationReport:      "Link to the verification report",
		FieldOtherInfo:               "Additional project labels and credit metadata",
	},
}

// SupportedTypes lists the certificate types the TCAT template covers.
// RNG and CR are excluded by business rule, not because their schema is
// undefined.
var SupportedTypes = []eac.CertificateType{
	eac.CertificateTypeREC,
	eac.CertificateTypeRTC,
	eac.CertificateTypeSAF,
	eac.CertificateTypeCC,
}

// IsSupported reports whether a certificate type participates in TCAT export
func IsSupported(t eac.CertificateType) bool {
	for _, s := range SupportedTypes {
		if s == t {
			return true
		}
	}
	return false
}

// FieldsForType returns the 16 disclosure field definitions for a
// certificate type. Types without their own description set fall back to the
// common descriptions.
func FieldsForType(t eac.CertificateType) []FieldDefinition {
	descriptions := typeDescriptions[t]
	fields := make([]FieldDefinition, 0, len(fieldOrder))
	for _, f := range fieldOrder {
		desc, ok := descriptions[f.field]
		if !ok {
			desc = commonDescriptions[f.field]
		}
		fields = append(fields, FieldDefinition{
			Key:         f.key,
			Field:       f.field,
			Label:       f.label,
			Description: desc,
		})
	}
	return fields
}

// ShortTypeCode returns the file-name code for a certificate type
func ShortTypeCode(t eac.CertificateType) string {
	switch t {
	case eac.CertificateTypeREC:
		return "RE"
	case eac.CertificateTypeRTC:
		return "RT"
	case eac.CertificateTypeRNG:
		return "RNG"
	case eac.CertificateTypeSAF:
		return "SAF"
	case eac.CertificateTypeCC:
		return "CC"
	default:
		return string(t)
	}
}
