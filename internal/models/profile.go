package models

import (
	"encoding/json"
	"strings"

	"invoice-import-backend/internal/apperrors"
)

// ClientProfile is the JSON document naming who an invoice is billed to.
type ClientProfile struct {
	Client       ClientInfo `json:"client"`
	PaymentTerms string     `json:"payment_terms,omitempty"`
}

type ClientInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type rawProfile struct {
	Client *struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
	} `json:"client"`
	PaymentTerms *string `json:"payment_terms"`
}

// ParseClientProfile decodes a client profile. The client name is required;
// a missing or null address becomes empty.
func ParseClientProfile(data []byte) (*ClientProfile, error) {
	var raw rawProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.Profile("client profile is not valid JSON", err)
	}
	if raw.Client == nil {
		return nil, apperrors.Profile("client profile has no client object", nil)
	}
	if raw.Client.Name == nil || strings.TrimSpace(*raw.Client.Name) == "" {
		return nil, apperrors.Profile("client profile has no client name", nil)
	}

	p := &ClientProfile{
		Client:       ClientInfo{Name: strings.TrimSpace(*raw.Client.Name)},
		PaymentTerms: DefaultPaymentTerms,
	}
	if raw.Client.Address != nil {
		p.Client.Address = *raw.Client.Address
	}
	if raw.PaymentTerms != nil && strings.TrimSpace(*raw.PaymentTerms) != "" {
		p.PaymentTerms = strings.TrimSpace(*raw.PaymentTerms)
	}
	return p, nil
}
