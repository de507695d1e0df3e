package client

import "time"

// KnownIdentityFields are the only candidate fields the engine reads.
type KnownIdentityFields struct {
	Name     string `json:"name" validate:"max=255"`
	City     string `json:"city" validate:"max=120"`
	State    string `json:"state" validate:"max=64"`
	Document string `json:"document" validate:"max=32"`
}

// Attributes carries every non-identity value through to the store untouched.
type Attributes map[string]any

func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

type Client struct {
	ID                 string
	OwnerID            string
	Name               string
	City               string
	State              string
	Document           string
	NameNormalized     string
	CityNormalized     string
	DocumentNormalized string
	Fingerprint        string
	Attributes         Attributes
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewClient builds a client from a candidate, deriving every normalized column.
func NewClient(id, ownerID string, fields KnownIdentityFields, attributes Attributes) Client {
	c := Client{
		ID:         id,
		OwnerID:    ownerID,
		Attributes: attributes.Clone(),
	}
	c.apply(fields)
	return c
}

// Merge overlays the non-empty candidate fields and attributes onto the client.
func (c *Client) Merge(fields KnownIdentityFields, attributes Attributes) {
	merged := c.Fields()
	if fields.Name != "" {
		merged.Name = fields.Name
	}
	if fields.City != "" {
		merged.City = fields.City
	}
	if fields.State != "" {
		merged.State = fields.State
	}
	if fields.Document != "" {
		merged.Document = fields.Document
	}
	c.apply(merged)

	if len(attributes) == 0 {
		return
	}
	if c.Attributes == nil {
		c.Attributes = make(Attributes, len(attributes))
	}
	for k, v := range attributes {
		c.Attributes[k] = v
	}
}

func (c Client) Fields() KnownIdentityFields {
	return KnownIdentityFields{
		Name:     c.Name,
		City:     c.City,
		State:    c.State,
		Document: c.Document,
	}
}

func (c Client) Identity() NormalizedIdentity {
	return NormalizedIdentity{
		Name:     c.NameNormalized,
		City:     c.CityNormalized,
		State:    NormalizeState(c.State),
		Document: c.DocumentNormalized,
	}
}

func (c *Client) apply(fields KnownIdentityFields) {
	identity := NormalizeFields(fields)

	c.Name = fields.Name
	c.City = fields.City
	c.State = fields.State
	c.Document = fields.Document
	c.NameNormalized = identity.Name
	c.CityNormalized = identity.City
	c.DocumentNormalized = identity.Document
	c.Fingerprint = identity.Fingerprint()
}

// ExistingRecord is the slice of a stored client needed for fingerprinting.
// Normalized values are optional caches and may be stale or missing.
type ExistingRecord struct {
	ID                 string
	OwnerID            string
	Name               string
	City               string
	State              string
	Document           string
	NameNormalized     *string
	CityNormalized     *string
	DocumentNormalized *string
}

// Identity prefers cached normalized values only when they are present and non-empty.
func (r ExistingRecord) Identity() NormalizedIdentity {
	return NormalizedIdentity{
		Name:     cachedOr(r.NameNormalized, r.Name, NormalizeText),
		City:     cachedOr(r.CityNormalized, r.City, NormalizeText),
		State:    NormalizeState(r.State),
		Document: cachedOr(r.DocumentNormalized, r.Document, NormalizeDocument),
	}
}

func cachedOr(cached *string, raw string, normalize func(string) string) string {
	if cached != nil && *cached != "" {
		return *cached
	}
	return normalize(raw)
}
