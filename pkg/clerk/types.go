package clerk

import "encoding/json"

// Public metadata keys shared with the identity provider. The invitation
// token is the durable correlation key: it rides along in provider
// invitation metadata and is stored locally, so acceptance never depends on
// the provider's own invitation id.
const (
	MetadataKeyRole            = "role"
	MetadataKeyShopID          = "shop_id"
	MetadataKeyInvitationToken = "invitation_token"
	MetadataKeyMechanicID      = "mechanic_id"
)

// Invitation is the provider-side invitation object.
type Invitation struct {
	ID             string         `json:"id"`
	EmailAddress   string         `json:"email_address"`
	Status         string         `json:"status"`
	PublicMetadata map[string]any `json:"public_metadata,omitempty"`
	URL            string         `json:"url,omitempty"`
	CreatedAt      int64          `json:"created_at"`
}

// CreateInvitationParams is the payload for POST /invitations.
type CreateInvitationParams struct {
	EmailAddress   string         `json:"email_address"`
	RedirectURL    string         `json:"redirect_url,omitempty"`
	PublicMetadata map[string]any `json:"public_metadata,omitempty"`
	Notify         *bool          `json:"notify,omitempty"`
}

// EmailAddress is a provider email identity record.
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// User is the provider-side account object, reduced to the fields the
// platform reads.
type User struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PublicMetadata        map[string]any `json:"public_metadata"`
}

// PrimaryEmail resolves the user's primary email, falling back to the first
// address on file.
func (u User) PrimaryEmail() string {
	for _, addr := range u.EmailAddresses {
		if addr.ID == u.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(u.EmailAddresses) > 0 {
		return u.EmailAddresses[0].EmailAddress
	}
	return ""
}

// UpdateUserMetadataParams is the payload for PATCH /users/{id}/metadata.
// Only the provided maps are merged; nil maps are left untouched.
type UpdateUserMetadataParams struct {
	PublicMetadata map[string]any `json:"public_metadata,omitempty"`
}

// Event is a verified webhook envelope. Data stays raw until the consumer
// knows which payload shape the type implies.
type Event struct {
	ID     string
	Type   string
	Data   json.RawMessage
	Object string
}

// Webhook event types the platform consumes.
const (
	EventUserCreated        = "user.created"
	EventUserUpdated        = "user.updated"
	EventUserDeleted        = "user.deleted"
	EventInvitationAccepted = "invitation.accepted"
)

// UserEventData is the payload carried by user.* events.
type UserEventData struct {
	ID                    string         `json:"id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	ImageURL              string         `json:"image_url"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PublicMetadata        map[string]any `json:"public_metadata"`
	Deleted               bool           `json:"deleted"`
}

// PrimaryEmail resolves the event subject's primary email.
func (d UserEventData) PrimaryEmail() string {
	for _, addr := range d.EmailAddresses {
		if addr.ID == d.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

// MetadataString pulls a string value out of the event's public metadata.
func (d UserEventData) MetadataString(key string) string {
	if d.PublicMetadata == nil {
		return ""
	}
	if v, ok := d.PublicMetadata[key].(string); ok {
		return v
	}
	return ""
}

// InvitationEventData is the payload carried by invitation.* events. The
// provider does not include the application user id here, which is why the
// consumer falls back to email correlation.
type InvitationEventData struct {
	ID             string         `json:"id"`
	EmailAddress   string         `json:"email_address"`
	Status         string         `json:"status"`
	PublicMetadata map[string]any `json:"public_metadata"`
}
