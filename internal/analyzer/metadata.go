package analyzer

// TypeMetadata documents an entity type for API consumers.
type TypeMetadata struct {
	Description string `json:"description"`
	Example     string `json:"example"`
	Source      string `json:"source"`
}

// Detection sources reported in metadata.
const (
	sourceModel   = "NER model"
	sourcePattern = "Pattern matching"
	sourceCustom  = "Custom pattern"
)

func builtinMetadata() map[string]TypeMetadata {
	return map[string]TypeMetadata{
		// Generic types from the model
		"PERSON":       {Description: "Names of people", Example: "John Smith", Source: sourceModel},
		"ORGANIZATION": {Description: "Names of companies, agencies, institutions", Example: "Insurance Australia Group", Source: sourceModel},
		"LOCATION":     {Description: "Names of locations, countries, cities", Example: "Sydney", Source: sourceModel},
		"DATE":         {Description: "Calendar dates", Example: "January 1, 2023", Source: sourceModel},

		// Insurance-specific types
		"INSURANCE_POLICY_NUMBER": {Description: "Insurance policy identifiers", Example: "POL-12345678", Source: sourcePattern},
		"INSURANCE_CLAIM_NUMBER":  {Description: "Insurance claim identifiers", Example: "CL-12345678", Source: sourcePattern},
		"VEHICLE_REGISTRATION":    {Description: "Vehicle registration numbers", Example: "ABC123", Source: sourcePattern},
		"VEHICLE_VIN":             {Description: "Vehicle identification numbers", Example: "1HGCM82633A123456", Source: sourcePattern},

		// Contact information
		"EMAIL_ADDRESS": {Description: "Email addresses", Example: "person@example.com", Source: sourcePattern},
		"PHONE_NUMBER":  {Description: "Phone numbers", Example: "0412 345 678", Source: sourcePattern},
		"ADDRESS":       {Description: "Physical addresses", Example: "123 Main St, Sydney", Source: sourcePattern},

		// Australian-specific types
		"AU_TFN":             {Description: "Australian Tax File Numbers", Example: "123 456 789", Source: sourcePattern},
		"AU_ABN":             {Description: "Australian Business Numbers", Example: "51 824 753 556", Source: sourcePattern},
		"AU_MEDICARE":        {Description: "Medicare card numbers", Example: "2123 45678 1", Source: sourcePattern},
		"AU_DRIVERS_LICENSE": {Description: "Australian driver's license numbers", Example: "12345678", Source: sourcePattern},
	}
}
