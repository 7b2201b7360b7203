package submitlead

import (
	"net"
	"net/http"
	"strings"

	classifylead "lead-gateway/internal/workers/lead/classify-lead"
)

// ClientAddress derives the caller's address: the first X-Forwarded-For
// entry, then X-Real-IP, then the connection address, then "Unknown".
func ClientAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if r.RemoteAddr != "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return host
		}
		return r.RemoteAddr
	}
	return UnknownAddress
}

// firstLead returns leads[0] when it is an object.
func firstLead(payload map[string]interface{}) map[string]interface{} {
	leads, ok := payload["leads"].([]interface{})
	if !ok || len(leads) == 0 {
		return nil
	}
	lead, _ := leads[0].(map[string]interface{})
	return lead
}

func leadFields(lead map[string]interface{}) map[string]interface{} {
	if lead == nil {
		return nil
	}
	fields, _ := lead["fields"].(map[string]interface{})
	return fields
}

// enrich injects the client address and, when given, the classification
// into the lead. Tags go to properties, which is created when missing.
func enrich(lead, fields map[string]interface{}, clientAddress string, classification *classifylead.Classification) {
	fields[FieldIPAddress] = clientAddress
	if classification == nil {
		return
	}

	fields[FieldLeadTier] = int(classification.Tier)
	fields[FieldLeadPrice] = classification.Price
	fields[FieldMotivation] = classification.Motivation

	properties, ok := lead["properties"].(map[string]interface{})
	if !ok {
		properties = make(map[string]interface{})
		lead["properties"] = properties
	}
	properties[PropertyTags] = classification.Tags
}
