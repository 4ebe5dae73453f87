package ner

// Word lists used to suppress model output that is clearly not a person,
// organization, or location in insurance claim text.

var personFalsePositiveWords = map[string]bool{
	// Status and state words
	"balance": true, "outstanding": true, "await": true, "awaiting": true,
	"pending": true, "completed": true, "processed": true, "received": true,
	"submitted": true, "approved": true, "declined": true, "rejected": true,
	"cancelled": true, "closed": true, "open": true, "active": true,
	"inactive": true, "suspended": true, "terminated": true, "expired": true,
	"current": true, "previous": true, "ongoing": true, "finished": true,

	// Action words often misdetected
	"review": true, "update": true, "check": true, "verify": true,
	"confirm": true, "validate": true, "process": true, "submit": true,
	"approve": true, "decline": true, "reject": true, "cancel": true,
	"close": true, "complete": true, "advised": true, "notify": true,
	"inform": true, "contact": true, "follow": true, "proceed": true,
	"continue": true,

	// Business/Insurance specific terms
	"excess": true, "premium": true, "deductible": true, "coverage": true,
	"liability": true, "claim": true, "policy": true, "payment": true,
	"invoice": true, "receipt": true, "refund": true, "credit": true,
	"debit": true, "assessment": true, "evaluation": true, "inspection": true,
	"investigation": true, "settlement": true,

	// Service/Repair terms
	"repairer": true, "repairs": true, "service": true, "maintenance": true,
	"workshop": true, "garage": true, "parts": true, "replacement": true,
	"installation": true, "removal": true, "diagnostic": true, "estimate": true,

	// Communication status
	"unreachable": true, "unavailable": true, "contactable": true,
	"available": true, "busy": true, "engaged": true,

	// Common single words that aren't names
	"drop": true, "pickup": true, "delivery": true, "collection": true,
	"dispatch": true, "arrival": true, "departure": true, "transfer": true,
	"forward": true, "return": true, "exchange": true, "replace": true,

	// Document/Form related
	"form": true, "document": true, "report": true, "statement": true,
	"declaration": true, "certificate": true, "authorization": true,
	"approval": true, "confirmation": true, "acknowledgment": true,
	"notice": true,

	// Time-related terms
	"today": true, "tomorrow": true, "yesterday": true, "daily": true,
	"weekly": true, "monthly": true, "yearly": true, "immediate": true,
	"urgent": true, "routine": true, "scheduled": true, "overdue": true,

	// Quality/Condition terms
	"new": true, "used": true, "damaged": true, "repaired": true,
	"replaced": true, "original": true, "genuine": true, "aftermarket": true,
	"compatible": true, "suitable": true, "adequate": true,
	"insufficient": true,
}

// personStopWords end a detected name when they trail it; the span is trimmed
// back to the preceding word.
var personStopWords = map[string]bool{
	"subject": true, "matter": true, "issue": true, "claim": true,
	"policy": true, "number": true, "date": true, "time": true,
	"amount": true, "status": true, "type": true, "category": true,
}

var streetSuffixes = []string{
	" st", " street", " rd", " road",
	" ave", " avenue", " dr", " drive",
	" ln", " lane", " pl", " place",
	" ct", " court", " cr", " crescent",
}

var organizationFalsePositives = map[string]bool{
	"dob": true, "doi": true, "medicare": true,
	"abn": true, "tfn": true, "acn": true,
}

var locationFalsePositives = map[string]bool{
	// Action words
	"await": true, "awaiting": true, "awaits": true, "awaited": true,
	"repair": true, "repairs": true, "repairing": true, "repaired": true,
	"service": true, "services": true, "servicing": true, "serviced": true,
	"process": true, "processing": true, "processed": true,
	"update": true, "updates": true, "updating": true, "updated": true,
	"review": true, "reviews": true, "reviewing": true, "reviewed": true,
	"submit": true, "submits": true, "submitting": true, "submitted": true,
	"pending": true, "complete": true, "completed": true, "completing": true,

	// Status words
	"open": true, "closed": true, "active": true, "inactive": true,
	"approved": true, "declined": true, "rejected": true, "cancelled": true,
	"available": true, "unavailable": true, "occupied": true, "vacant": true,

	// Business/Insurance terms
	"claim": true, "claims": true, "policy": true, "policies": true,
	"coverage": true, "liability": true, "excess": true, "premium": true,
	"payment": true, "balance": true, "outstanding": true, "overdue": true,

	// Department/Service terms
	"workshop": true, "workshops": true, "garage": true, "garages": true,
	"parts": true, "spares": true, "supplies": true, "inventory": true,
	"storage": true, "warehouse": true, "facility": true, "facilities": true,

	// Common misdetections
	"drop": true, "drops": true, "pickup": true, "delivery": true,
	"arrival": true, "departure": true, "transit": true, "shipping": true,
}

// Single words starting with these prefixes are never locations.
var nonLocationPrefixes = []string{
	"await", "repair", "serv", "proc", "updat", "review",
	"submit", "pend", "complet", "approv", "declin", "reject",
}
