package patterns

// GeneralDefinitions returns the built-in recognizers for common PII.
func GeneralDefinitions() []Definition {
	return []Definition{
		{
			EntityType: "CREDIT_CARD",
			Patterns: []Pattern{
				NewRegex(`\b\d{4}[\s-]\d{4}[\s-]\d{4}[\s-]\d{4}\b`),
			},
			Context: []string{"credit", "card", "visa", "mastercard", "payment"},
			Name:    "Credit Card Number",
		},
		{
			EntityType: "PERSON",
			Patterns: []Pattern{
				NewRegex(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`),
				NewRegex(`\bName:\s*[A-Z][a-z]+\s+[A-Z][a-z]+\b`),
				NewRegex(`\bCustomer:\s*[A-Z][a-z]+\s+[A-Z][a-z]+\b`),
			},
			Context: []string{"name", "person", "customer", "insured", "patient"},
			Name:    "Person Name",
		},
		{
			EntityType: "EMAIL_ADDRESS",
			Patterns: []Pattern{
				NewRegex(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`),
			},
			Context: []string{"email", "contact", "mail", "@"},
			Name:    "Email Address",
		},
		{
			EntityType: "DATE_OF_BIRTH",
			Patterns: []Pattern{
				NewRegex(`\bDOB:\s*\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b`),
				NewRegex(`\bDate of Birth:\s*\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b`),
				NewRegex(`\bBirth Date:\s*\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b`),
			},
			Context: []string{"dob", "birth", "date", "born"},
			Name:    "Date of Birth",
		},
		{
			EntityType: "LOCATION",
			Patterns: []Pattern{
				NewRegex(`\b(?:Sydney|Melbourne|Brisbane|Perth|Adelaide|Hobart|Canberra|Darwin)(?:,\s*(?:NSW|VIC|QLD|WA|SA|TAS|NT|ACT))?\b`),
				NewRegex(`\b(?:New South Wales|Victoria|Queensland|Western Australia|South Australia|Tasmania|Northern Territory|Australian Capital Territory)\b`),
			},
			Context: []string{"location", "city", "state", "place", "at"},
			Name:    "Location",
		},
		{
			EntityType: "DATE",
			Patterns: []Pattern{
				NewRegex(`\b\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b`),
			},
			Context: []string{"date", "on", "when", "time", "day"},
			Name:    "Date",
		},
		{
			EntityType: "MONEY_AMOUNT",
			Patterns: []Pattern{
				NewRegex(`\$\d{1,3}(?:,\d{3})*(?:\.\d{2})?\b`),
			},
			Context: []string{"amount", "payment", "cost", "price", "value"},
			Name:    "Money Amount",
		},
		{
			EntityType: "ORGANIZATION",
			Patterns: []Pattern{
				NewRegex(`\b(?:Insurance|Insurances|Bank|Financial|Services|Motors|Mechanics)\b`),
				NewRegex(`\b[A-Z][a-z]+\s+(?:Insurance|Bank|Financial|Services|Motors|Mechanics)\b`),
				NewRegex(`\b[A-Z][A-Za-z0-9]+(?:\s+[A-Z][A-Za-z0-9]+)*\s+(?:Pty|Proprietary)\s+Ltd\b`),
				NewRegex(`\b[A-Z][A-Za-z0-9]+(?:\s+[A-Z][A-Za-z0-9]+)*\s+Limited\b`),
				NewRegex(`\b[A-Z][A-Za-z0-9]+(?:\s+[A-Z][A-Za-z0-9]+)*\s+(?:Inc|LLC|LLP|Corp|Corporation)\b`),
				NewRegex(`Payee\s*(?:Name)?\s*:\s*([A-Z][A-Za-z0-9]+(?:\s+[A-Z][A-Za-z0-9]+)*(?:\s+(?:Pty\s+Ltd|Limited|Inc|LLC))?)\b`),
				NewRegex(`(?:Company|Business|Firm)\s*(?:Name)?\s*:\s*([A-Z][A-Za-z0-9]+(?:\s+[A-Z][A-Za-z0-9]+)*)\b`),
			},
			Context: []string{"company", "organization", "business", "firm", "payee", "vendor", "supplier"},
			Name:    "Organization",
		},
	}
}
