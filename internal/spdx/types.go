package spdx

import "github.com/spdx/tools-golang/spdx/v2/v2_3"

// Version is the only spdxVersion this package reads and writes.
const Version = v2_3.Version

// DataLicense is the fixed license of SPDX document metadata.
const DataLicense = v2_3.DataLicense

// DefaultLicenseListVersion is written when the metadata names none.
const DefaultLicenseListVersion = "3.20"

// documentElement is the element ID of the document itself, without the
// SPDXRef- prefix tools-golang adds on output.
const documentElement = "DOCUMENT"

// External reference categories and types of SPDX 2.3.
const (
	categoryPackageManager = "PACKAGE-MANAGER"
	categorySecurity       = "SECURITY"
	categoryPersistentID   = "PERSISTENT-ID"
	categoryOther          = "OTHER"

	refPurl   = "purl"
	refCPE22  = "cpe22Type"
	refCPE23  = "cpe23Type"
	refGitoid = "gitoid"
)

// annotationNodeID prefixes the comment of the annotation that records a
// node ID sanitizing changed.
const annotationNodeID = "sbomconv:node-id="
