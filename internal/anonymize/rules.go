package anonymize

import "regexp"

// Rule is one entry of the ordered PII detection table. Rules are
// applied in table order; specific patterns (healthcare identifiers,
// record numbers, addresses) come before the generic name pattern so
// the generic rule cannot consume their leading words first.
type Rule struct {
	Kind    string
	Pattern *regexp.Regexp
	Token   string
	Method  string
}

const (
	methodPattern      = "pattern_replacement"
	methodHealthcare   = "healthcare_specific"
	methodKAnonymity   = "k_anonymity"
	methodSuppression  = "quasi_identifier_suppression"
	methodGeneralize   = "medical_generalization"
	methodDiffPrivacy  = "differential_privacy"
)

// piiRules is the fixed basic-level detection table.
var piiRules = []Rule{
	{
		Kind:    "phone",
		Pattern: regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`),
		Token:   "[PHONE]",
		Method:  methodPattern,
	},
	{
		Kind:    "email",
		Pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Token:   "[EMAIL]",
		Method:  methodPattern,
	},
	{
		Kind:    "ssn",
		Pattern: regexp.MustCompile(`\b[0-9]{3}-[0-9]{2}-[0-9]{4}\b`),
		Token:   "[SSN]",
		Method:  methodPattern,
	},
	{
		Kind:    "credit_card",
		Pattern: regexp.MustCompile(`\b(?:[0-9]{4}[-\s]?){3}[0-9]{4}\b`),
		Token:   "[CREDIT_CARD]",
		Method:  methodPattern,
	},
	{
		Kind:    "medical_record_number",
		Pattern: regexp.MustCompile(`(?i)\b(?:MRN|Medical Record|Patient ID)[:.\s]*[A-Z0-9]{6,}\b`),
		Token:   "[MEDICAL_RECORD_NUMBER]",
		Method:  methodPattern,
	},
	{
		Kind:    "insurance_number",
		Pattern: regexp.MustCompile(`(?i)\b(?:Insurance|Policy)[:.\s]*[A-Z0-9]{8,}\b`),
		Token:   "[INSURANCE_NUMBER]",
		Method:  methodPattern,
	},
	{
		Kind:    "doctor_name",
		Pattern: regexp.MustCompile(`\bDr\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`),
		Token:   "[DOCTOR_NAME]",
		Method:  methodHealthcare,
	},
	{
		Kind:    "healthcare_facility",
		Pattern: regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Hospital|Medical Center|Clinic|Health System)\b`),
		Token:   "[HEALTHCARE_FACILITY]",
		Method:  methodHealthcare,
	},
	{
		Kind:    "medication",
		Pattern: regexp.MustCompile(`\b(?:\d+\s*)?(?i:mg|mcg|ml|tablets?|capsules?|doses?)\s+(?i:of)\s+[A-Z][a-z]+`),
		Token:   "[MEDICATION]",
		Method:  methodHealthcare,
	},
	{
		Kind:    "medical_procedure",
		Pattern: regexp.MustCompile(`(?i)\b(?:surgery|operation|procedure|treatment|therapy)\s+(?:on|for|of)\s+[a-z][a-z\s]*`),
		Token:   "[MEDICAL_PROCEDURE]",
		Method:  methodHealthcare,
	},
	{
		Kind:    "address",
		Pattern: regexp.MustCompile(`(?i)\b\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Circle|Cir|Place|Pl)\b`),
		Token:   "[ADDRESS]",
		Method:  methodPattern,
	},
	{
		Kind:    "date_of_birth",
		Pattern: regexp.MustCompile(`\b(?:0?[1-9]|1[0-2])[-/](?:0?[1-9]|[12][0-9]|3[01])[-/](?:19|20)\d{2}\b`),
		Token:   "[DATE_OF_BIRTH]",
		Method:  methodPattern,
	},
	{
		Kind:    "name",
		Pattern: regexp.MustCompile(`\b[A-Z][a-z]+\s[A-Z][a-z]+\b`),
		Token:   "[NAME]",
		Method:  methodPattern,
	},
}

// validationRules is the subset used to re-scan anonymized output.
// Replacement tokens are all-caps bracketed and cannot re-match.
var validationRules = piiRules

// conditionGeneralizations maps specific diagnoses to broader condition
// categories for the advanced level. Ordered for deterministic output.
var conditionGeneralizations = []struct {
	Specific string
	General  string
	Pattern  *regexp.Regexp
}{
	{"diabetes", "metabolic condition", regexp.MustCompile(`(?i)\bdiabetes\b`)},
	{"hypertension", "cardiovascular condition", regexp.MustCompile(`(?i)\bhypertension\b`)},
	{"depression", "mental health condition", regexp.MustCompile(`(?i)\bdepression\b`)},
	{"anxiety", "mental health condition", regexp.MustCompile(`(?i)\banxiety\b`)},
	{"cancer", "oncological condition", regexp.MustCompile(`(?i)\bcancer\b`)},
	{"arthritis", "musculoskeletal condition", regexp.MustCompile(`(?i)\barthritis\b`)},
}

var (
	agePattern = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:years?|yrs?)\s*old\b`)

	locationTimePattern = regexp.MustCompile(`(?i)\b(?:at|in|near)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:on|at)\s+\d{1,2}:\d{2}`)

	longDatePattern = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+(\d{4})\b`)

	measurementPattern = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(mg|mcg|ml|pounds?|lbs?|kg|degrees?|bpm)\b`)
)

// generalizeAge maps an age in years onto its decade bucket.
func generalizeAge(age int) string {
	switch {
	case age < 18:
		return "under 18"
	case age < 30:
		return "18-29"
	case age < 40:
		return "30-39"
	case age < 50:
		return "40-49"
	case age < 60:
		return "50-59"
	case age < 70:
		return "60-69"
	default:
		return "70+"
	}
}
