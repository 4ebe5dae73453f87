package patterns

// AUDefinitions returns the built-in recognizers for Australian identifiers.
func AUDefinitions() []Definition {
	return []Definition{
		{
			EntityType: "AU_TFN",
			Patterns: []Pattern{
				NewRegex(`(?:TFN|Tax\s+File\s+Number)[:\s]*(\d{3}\s*\d{3}\s*\d{3})\b`),
			},
			Context: []string{"tax", "file", "number", "TFN"},
			Name:    "Australian Tax File Number",
		},
		{
			EntityType: "AU_PHONE",
			Patterns: []Pattern{
				NewRegex(`\b(?:\+61|0)4\d{2}[\s-]?\d{3}[\s-]?\d{3}\b`),
				NewRegex(`\b(?:\+61|0)[2378][\s-]?\d{4}[\s-]?\d{4}\b`),
				NewRegex(`\(\d{2}\)\s*\d{4}[\s-]?\d{4}\b`),
				NewRegex(`\b13\d{2}\s*\d{2}\b`),
				NewRegex(`\b1300\s*\d{3}\s*\d{3}\b`),
				NewRegex(`\b1800\s*\d{3}\s*\d{3}\b`),
			},
			Context: []string{"phone", "mobile", "call", "contact", "telephone", "ph", "tel"},
			Name:    "Australian Phone Number",
		},
		{
			EntityType: "AU_MEDICARE",
			Patterns: []Pattern{
				NewRegex(`\b[2-6]\d{3}\s*\d{5}\s*\d{1}\b`),
				NewRegex(`(?:Medicare|Medicare\s+Number)[:\s]*([2-6]\d{3}\s*\d{5}\s*\d{1})\b`),
			},
			Context: []string{"medicare", "health", "card", "insurance"},
			Name:    "Australian Medicare Number",
		},
		{
			EntityType: "AU_DRIVERS_LICENSE",
			Patterns: []Pattern{
				NewRegex(`\b[A-Z]{2,3}\d{5,8}\b`),
				NewRegex(`\b(?:License|Licence):\s*[A-Z0-9]{5,10}\b`),
			},
			Context: []string{"license", "licence", "driver", "driving"},
			Name:    "Australian Driver's License",
		},
		{
			EntityType: "AU_ADDRESS",
			Patterns: []Pattern{
				NewRegex(`\b\d+\s+[A-Za-z\s]+(?:Street|St|Road|Rd|Avenue|Ave|Drive|Dr|Lane|Ln|Place|Pl|Court|Ct|Crescent|Cr),?\s*[A-Za-z\s]*,?\s*(?:NSW|VIC|QLD|WA|SA|TAS|NT|ACT)\s*\d{4}\b`),
				NewRegex(`\b\d+\s+[A-Za-z\s]+(?:Street|St|Road|Rd|Avenue|Ave|Drive|Dr|Lane|Ln|Place|Pl|Court|Ct|Crescent|Cr),?\s*[A-Za-z\s]+(?:,\s*(?:NSW|VIC|QLD|WA|SA|TAS|NT|ACT))?\b`),
				NewRegex(`\b\d+\s+[A-Za-z\s]+(?:Street|St|Road|Rd|Avenue|Ave|Drive|Dr|Lane|Ln|Place|Pl|Court|Ct|Crescent|Cr)\b`),
			},
			Context: []string{"address", "street", "road", "suburb", "live", "residence"},
			Name:    "Australian Address",
		},
		{
			EntityType: "AU_POSTCODE",
			Patterns: []Pattern{
				NewRegex(`\b(?:0[289]\d{2}|[1-9]\d{3})\b`),
				NewRegex(`(?:NSW|VIC|QLD|WA|SA|TAS|NT|ACT)\s+(\d{4})\b`),
			},
			Context: []string{"postcode", "postal", "code", "zip", "post code"},
			Name:    "Australian Postcode",
		},
		{
			EntityType: "AU_BSB",
			Patterns: []Pattern{
				NewRegex(`\b\d{3}-\d{3}\b`),
				NewRegex(`BSB\s*:\s*(\d{3}-\d{3})\b`),
				NewRegex(`BSB\s*(?:Number|#)?\s*:\s*(\d{3}-\d{3})\b`),
				NewRegex(`(?:Bank\s+State\s+Branch|BSB)\s*(?:Code|Number)?[:\s]*(\d{3}-\d{3})\b`),
			},
			Context: []string{"bsb", "bank", "branch", "payment", "transfer"},
			Name:    "Australian BSB",
		},
		{
			EntityType: "AU_ACCOUNT_NUMBER",
			Patterns: []Pattern{
				NewRegex(`Account\s*(?:Number|#)?\s*:\s*(\d{4,10})\b`),
				NewRegex(`(?:Bank\s+)?Account\s*(?:Number|No\.?|#)?\s*:\s*(\d{4}\s+\d{4})\b`),
				NewRegex(`(?:account|acct)\s*(?:number|#)?[:\s]*(\d{4,10})\b`),
			},
			Context: []string{"account", "bank", "payment", "deposit", "transfer"},
			Name:    "Australian Bank Account Number",
		},
		{
			EntityType: "AU_ABN",
			Patterns: []Pattern{
				NewRegex(`(?:ABN|Australian\s+Business\s+Number)[:\s]*(\d{2}\s*\d{3}\s*\d{3}\s*\d{3})\b`),
			},
			Context: []string{"abn", "australian business number", "business", "company"},
			Name:    "Australian Business Number",
		},
		{
			EntityType: "AU_ACN",
			Patterns: []Pattern{
				NewRegex(`(?:ACN|Australian\s+Company\s+Number)[:\s]*(\d{3}\s*\d{3}\s*\d{3})\b`),
			},
			Context: []string{"acn", "australian company number", "company"},
			Name:    "Australian Company Number",
		},
		{
			EntityType: "AU_PASSPORT",
			Patterns: []Pattern{
				NewRegex(`\b[A-Z][0-9]{7}\b`),
				NewRegex(`\b[A-Z]{2}[0-9]{6}\b`),
				NewRegex(`(?:Passport|Passport\s+Number)[:\s]*([A-Z][0-9]{7})\b`),
			},
			Context: []string{"passport", "travel", "document"},
			Name:    "Australian Passport Number",
		},
		{
			EntityType: "AU_CENTRELINK_CRN",
			Patterns: []Pattern{
				NewRegex(`\b\d{3}\s*\d{3}\s*\d{3}[A-Z]?\b`),
				NewRegex(`(?:CRN|Centrelink\s+Reference\s+Number)[:\s]*(\d{3}\s*\d{3}\s*\d{3}[A-Z]?)\b`),
			},
			Context: []string{"centrelink", "crn", "reference", "welfare"},
			Name:    "Centrelink Customer Reference Number",
		},
		{
			EntityType: "VEHICLE_REGISTRATION",
			Patterns: []Pattern{
				NewRegex(`\b(?:Registration|Rego)(?:\.|\:|\s)+\s*([A-Z0-9]{1,3}[-\s]?[A-Z0-9]{1,3}[-\s]?[A-Z0-9]{1,3})\b`),
				NewRegex(`\brego\s+([A-Z0-9]{1,3}[-\s]?[A-Z0-9]{1,3}[-\s]?[A-Z0-9]{1,3})\b`),
				NewRegex(`\b[A-Z]{2,3}\d{2,3}[A-Z]?\b`),
				NewRegex(`\b\d{1,3}[A-Z]{2,3}\b`),
			},
			Context: []string{"registration", "rego", "vehicle", "car", "plate", "number plate"},
			Name:    "Vehicle Registration",
		},
	}
}
