package models

// Delivery channels reported by the verification service
const (
	DeliveryWhatsApp = "whatsapp"
	DeliverySMS      = "sms"
)

// VerificationSession is the pending verification record. It exists from a
// successful send-code until the matching verify-code succeeds.
type VerificationSession struct {
	PhoneNumber    string  `json:"phone_number" bson:"phone_number"`
	CountryCode    string  `json:"country_code" bson:"country_code"`
	ServerPhoneKey string  `json:"server_phone_key" bson:"server_phone_key"`
	IssuedCode     *string `json:"issued_code,omitempty" bson:"issued_code,omitempty"`
	DeliveryMethod string  `json:"delivery_method" bson:"delivery_method"`
}

// HasIssuedCode reports whether the service echoed the code back.
func (s *VerificationSession) HasIssuedCode() bool {
	return s != nil && s.IssuedCode != nil && *s.IssuedCode != ""
}

// AuthenticatedIdentity is the long-lived record written after a successful
// verify-code. Name stays empty until the profile step completes.
type AuthenticatedIdentity struct {
	ID           string `json:"id" bson:"id"`
	Name         string `json:"name" bson:"name"`
	Phone        string `json:"phone" bson:"phone"`
	IsVerified   bool   `json:"is_verified" bson:"is_verified"`
	AccessToken  string `json:"access_token" bson:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty" bson:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty" bson:"token_type,omitempty"`
}

// NeedsProfile reports whether the identity has no display name yet.
func (i *AuthenticatedIdentity) NeedsProfile() bool {
	return i == nil || i.Name == ""
}
