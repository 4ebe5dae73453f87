package patterns

// InsuranceDefinitions returns the built-in recognizers for insurance
// identifiers and claim-note fields.
func InsuranceDefinitions() []Definition {
	return []Definition{
		{
			EntityType: "INSURANCE_POLICY_NUMBER",
			Patterns: []Pattern{
				NewRegex(`\b(?:POL|P|Policy)[- ]?\d{6,9}\b`),
				NewRegex(`\bAU[-\s]*\d{5,10}\b`),
				NewRegex(`\bPolicy (?:Number|#):\s*[A-Za-z0-9-]{6,15}\b`),
				NewRegex(`\bPolicy\s*(?:Number|#|No):\s*[A-Za-z0-9-]{6,15}\b`),
				NewRegex(`\bPolicy:\s*[A-Za-z0-9-]{6,15}\b`),
			},
			Context: []string{"policy", "insurance", "coverage", "insured"},
			Name:    "Insurance Policy Number",
		},
		{
			EntityType: "INSURANCE_CLAIM_NUMBER",
			Patterns: []Pattern{
				NewRegex(`\b(?:CL|C)[- ]?\d{6,9}\b`),
				NewRegex(`\bClaim (?:Number|Reference|#):\s*[A-Za-z0-9-]{6,15}\b`),
				NewRegex(`\bClaim\s*(?:Number|#|No|Ref):\s*[A-Za-z0-9-]{6,15}\b`),
				NewRegex(`\bClaim:\s*[A-Za-z0-9-]{6,15}\b`),
			},
			Context: []string{"claim", "incident", "accident", "reference"},
			Name:    "Insurance Claim Number",
		},
		{
			EntityType: "VEHICLE_VIN",
			Patterns: []Pattern{
				NewRegex(`\b[A-HJ-NPR-Z0-9]{17}\b`),
				NewRegex(`\bVIN:\s*[A-HJ-NPR-Z0-9]{17}\b`),
				NewRegex(`\bVehicle Identification Number:\s*[A-HJ-NPR-Z0-9]{17}\b`),
			},
			Context: []string{"vin", "vehicle", "identification", "number", "chassis"},
			Name:    "Vehicle Identification Number",
		},
		{
			EntityType: "INVOICE_NUMBER",
			Patterns: []Pattern{
				NewRegex(`\bINV-\d{4,10}\b`),
				NewRegex(`\b(?:Quote|Invoice)\s*(?:#|Number):\s*[A-Za-z0-9-]{4,15}\b`),
				NewRegex(`\bQ-\d{4}\b`),
			},
			Context: []string{"invoice", "quote", "billing", "payment", "receipt"},
			Name:    "Invoice or Quote Number",
		},
		{
			EntityType: "BROKER_CODE",
			Patterns: []Pattern{
				NewRegex(`\bBRK-[0-9]{4}\b`),
				NewRegex(`\bBroker\s*(?:Code|ID):\s*[A-Z0-9-]{4,10}\b`),
			},
			Context: []string{"broker", "agent", "representative", "intermediary"},
			Name:    "Insurance Broker Code",
		},
		{
			EntityType: "VEHICLE_DETAILS",
			Patterns: []Pattern{
				NewRegex(`\b(?:Toyota|Honda|Mazda|Ford|Hyundai|Kia|Nissan|Volkswagen|BMW|Mercedes|Audi|Holden)\s+[A-Za-z0-9]+\s+\d{4}\b`),
				NewRegex(`\b\d{4}\s+(?:Toyota|Honda|Mazda|Ford|Hyundai|Kia|Nissan|Volkswagen|BMW|Mercedes|Audi|Holden)\s+[A-Za-z0-9]+\b`),
			},
			Context: []string{"vehicle", "car", "make", "model", "year"},
			Name:    "Vehicle Details",
		},
		{
			EntityType: "INCIDENT_DATE",
			Patterns: []Pattern{
				NewRegex(`\bon\s+\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b`),
				NewRegex(`\bDate of (?:incident|accident|loss|event):\s*\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b`),
			},
			Context: []string{"date", "occurred", "happened", "incident", "accident"},
			Name:    "Incident Date",
		},
		{
			EntityType: "NAME_CONSULTANT",
			Patterns: []Pattern{
				// The captured group is the name; the trailing field label is
				// consumed but not part of the span.
				NewRegex(`(?:Diary\s+)?Assigned\s+To\s*:\s*([A-Z][a-z]+\s+[A-Z][a-z]+)\s+(?:Subject|Re|Regarding|For|About|Status|Case|Date|Time|Matter|Issue|Type|Category)(?:\s|:|$)`),
				NewRegex(`(?:Consultant|Agent|Handler|Officer)\s*:\s*([A-Z][a-z]+\s+[A-Z][a-z]+)\s+(?:Subject|Re|Regarding|For|About|Status|Case|Date|Time|Matter|Issue|Type|Category)(?:\s|:|$)`),
				NewRegex(`(?:Representative|Rep|Contact)\s*:\s*([A-Z][a-z]+\s+[A-Z][a-z]+)\s+(?:Subject|Re|Regarding|For|About|Status|Case|Date|Time|Matter|Issue|Type|Category)(?:\s|:|$)`),
				NewRegex(`(?m)(?:Diary\s+)?Assigned\s+To\s*:\s*([A-Z][a-z]+\s+[A-Z][a-z]+)$`),
				NewRegex(`(?m)(?:Consultant|Agent|Handler|Officer)\s*:\s*([A-Z][a-z]+\s+[A-Z][a-z]+)$`),
				NewRegex(`(?m)(?:Representative|Rep|Contact)\s*:\s*([A-Z][a-z]+\s+[A-Z][a-z]+)$`),
			},
			Context: []string{"assigned", "consultant", "agent", "handler", "officer", "representative"},
			Name:    "Consultant/Agent Name",
		},
	}
}

// BuiltinDefinitions returns the AU, general, and insurance recognizers in
// that order.
func BuiltinDefinitions() []Definition {
	var defs []Definition
	defs = append(defs, AUDefinitions()...)
	defs = append(defs, GeneralDefinitions()...)
	defs = append(defs, InsuranceDefinitions()...)
	return defs
}
