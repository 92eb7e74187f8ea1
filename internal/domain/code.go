package domain

import (
	"regexp"
	"strings"
)

type CodeKind string

const (
	CodeShipment CodeKind = "shipment"
	CodeItem     CodeKind = "item"
)

// ParsedCode is a raw decoded string classified into a typed reference.
type ParsedCode struct {
	Kind CodeKind
	ID   string
	Raw  string
}

// Grammar describes which decoded strings count as shipment or item codes.
// Calling surfaces use different prefixes (shipment hashes, "BOX-0000"
// demo labels), so the shapes are configuration rather than literals.
type Grammar struct {
	ShipmentPrefixes []string
	ItemPrefixes     []string
	// BareItemPattern optionally accepts prefix-less item labels, with the
	// whole match used as the item ID.
	BareItemPattern *regexp.Regexp
}

var defaultBareItemPattern = regexp.MustCompile(`^BOX-\d+$`)

func DefaultGrammar() Grammar {
	return Grammar{
		ShipmentPrefixes: []string{"SHIPMENT:"},
		ItemPrefixes:     []string{"ITEM:"},
		BareItemPattern:  defaultBareItemPattern,
	}
}

// Parse classifies raw into a shipment or item reference. It is total:
// every failure is a returned error, never a panic.
func (g Grammar) Parse(raw string) (ParsedCode, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ParsedCode{}, ErrEmptyCode
	}

	for _, prefix := range g.ShipmentPrefixes {
		if id, ok := strings.CutPrefix(trimmed, prefix); ok && id != "" {
			return ParsedCode{Kind: CodeShipment, ID: id, Raw: raw}, nil
		}
	}

	for _, prefix := range g.ItemPrefixes {
		if id, ok := strings.CutPrefix(trimmed, prefix); ok && id != "" {
			return ParsedCode{Kind: CodeItem, ID: id, Raw: raw}, nil
		}
	}

	if g.BareItemPattern != nil && g.BareItemPattern.MatchString(trimmed) {
		return ParsedCode{Kind: CodeItem, ID: trimmed, Raw: raw}, nil
	}

	return ParsedCode{}, ErrUnrecognizedCode
}
