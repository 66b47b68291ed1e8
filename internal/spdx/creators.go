package spdx

import (
	"strings"

	"github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/StinkyLord/sbomconv/internal/ident"
	"github.com/StinkyLord/sbomconv/sbom"
)

// Creator, supplier and originator types of SPDX 2.3.
const (
	typeTool         = "Tool"
	typePerson       = "Person"
	typeOrganization = "Organization"
)

// formatTool renders a tool creator as "Tool: name-version".
func formatTool(t *sbom.Tool) common.Creator {
	c := common.Creator{CreatorType: typeTool, Creator: t.Name}
	if t.Version != "" {
		c.Creator += "-" + t.Version
	}
	return c
}

// engineCreator is the creator entry of this converter.
func engineCreator() common.Creator {
	return formatTool(&sbom.Tool{Name: ident.EngineName, Version: ident.EngineVersion})
}

// parseTool splits "name-version" at the last dash that starts a version.
// Names with dashes and no trailing version stay whole.
func parseTool(s string) *sbom.Tool {
	s = strings.TrimSpace(s)
	for i := len(s) - 1; i > 0; i-- {
		if s[i] != '-' || i == len(s)-1 {
			continue
		}
		rest := s[i+1:]
		if isDigit(rest[0]) || (len(rest) > 1 && rest[0] == 'v' && isDigit(rest[1])) {
			return &sbom.Tool{Name: s[:i], Version: rest}
		}
	}
	return &sbom.Tool{Name: s}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// isEngine reports whether a tool creator is this converter's own stamp.
func isEngine(t *sbom.Tool) bool {
	return t.Name == ident.EngineName || strings.HasPrefix(t.Name, ident.EngineName+"-")
}

// formatPerson splits a supplier, originator or author into its SPDX type
// and "name (email)" value.
func formatPerson(p *sbom.Person) (typ, value string) {
	typ = typePerson
	if p.IsOrg() {
		typ = typeOrganization
	}
	value = p.Name
	if p.Email != "" {
		value += " (" + p.Email + ")"
	}
	return typ, value
}

// parsePerson reads a Person or Organization value of the form
// "name (email)". NOASSERTION and other types yield nil.
func parsePerson(typ, value string) *sbom.Person {
	var p sbom.Person
	switch typ {
	case typePerson:
		p.Kind = sbom.PersonKindPerson
	case typeOrganization:
		p.Kind = sbom.PersonKindOrganization
	default:
		return nil
	}
	s := strings.TrimSpace(value)
	if strings.HasSuffix(s, ")") {
		if open := strings.LastIndex(s, "("); open >= 0 {
			p.Email = strings.TrimSpace(s[open+1 : len(s)-1])
			s = strings.TrimSpace(s[:open])
		}
	}
	p.Name = s
	if p.Name == "" || sbom.IsUnset(p.Name) {
		return nil
	}
	return &p
}

func toSupplier(p *sbom.Person) *common.Supplier {
	typ, value := formatPerson(p)
	return &common.Supplier{SupplierType: typ, Supplier: value}
}

func toOriginator(p *sbom.Person) *common.Originator {
	typ, value := formatPerson(p)
	return &common.Originator{OriginatorType: typ, Originator: value}
}
