package analysis

import (
	"encoding/json"
	"errors"
)

// DecodePayload parses a backend response body. Only a body that is not a
// JSON object at all is an error; fields of the wrong type degrade to absent.
func DecodePayload(data []byte) (*Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("response is not a JSON object")
	}

	return &Payload{
		Status:    optionalString(raw["status"]),
		Message:   optionalString(raw["message"]),
		Technical: optionalRecords(raw["technical"]),
		Pricing:   optionalRecords(raw["pricing"]),
	}, nil
}

// Normalize coerces a payload into the fixed Result shape. The result owns
// its records; later changes to either side do not show through.
func Normalize(p *Payload) *Result {
	if p == nil {
		p = &Payload{}
	}

	result := &Result{
		Status:           DefaultStatus,
		Message:          DefaultMessage,
		TechnicalRecords: []Record{},
		PricingRecords:   []Record{},
	}

	if p.Status != nil && *p.Status != "" {
		result.Status = *p.Status
	}
	if p.Message != nil && *p.Message != "" {
		result.Message = *p.Message
	}
	if p.Technical != nil {
		result.TechnicalRecords = cloneRecords(p.Technical)
	}
	if p.Pricing != nil {
		result.PricingRecords = cloneRecords(p.Pricing)
	}

	result.TechnicalCount = len(result.TechnicalRecords)
	result.PricingCount = len(result.PricingRecords)

	return result
}

// FailedResult is rendered in place of real data when a fetch fails
func FailedResult() *Result {
	return &Result{
		Status:           StatusError,
		Message:          FailureMessage,
		TechnicalRecords: []Record{},
		PricingRecords:   []Record{},
	}
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

func optionalString(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

func optionalRecords(raw json.RawMessage) []Record {
	if len(raw) == 0 {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		var r Record
		if err := json.Unmarshal(item, &r); err != nil {
			// non-object rows carry nothing to render
			continue
		}
		records = append(records, r)
	}
	return records
}
