package utils

const (
	OrganizationName                      = "Arrienda"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	// DefaultReferenceTimeZone is the zone visit times are interpreted in
	// when neither config nor the property say otherwise.
	DefaultReferenceTimeZone = "America/Bogota"

	TestEmailSuffix = "testing@arrienda.co"
)
