package sbom

import (
	"fmt"
	"slices"
)

// NodeType distinguishes the kinds of inventory items.
type NodeType string

const (
	NodeTypePackage NodeType = "PACKAGE"
	NodeTypeFile    NodeType = "FILE"
)

var nodeTypes = []NodeType{NodeTypePackage, NodeTypeFile}

func (t *NodeType) UnmarshalText(b []byte) error {
	return parseEnum(b, nodeTypes, t, "node type")
}

// Purpose classifies what a node is for.
type Purpose string

const (
	PurposeApplication     Purpose = "APPLICATION"
	PurposeFramework       Purpose = "FRAMEWORK"
	PurposeLibrary         Purpose = "LIBRARY"
	PurposeContainer       Purpose = "CONTAINER"
	PurposeOperatingSystem Purpose = "OPERATING_SYSTEM"
	PurposeDevice          Purpose = "DEVICE"
	PurposeFirmware        Purpose = "FIRMWARE"
	PurposeSource          Purpose = "SOURCE"
	PurposeArchive         Purpose = "ARCHIVE"
	PurposeFile            Purpose = "FILE"
	PurposeInstall         Purpose = "INSTALL"
	PurposeData            Purpose = "DATA"
	PurposeOther           Purpose = "OTHER"
)

var purposes = []Purpose{
	PurposeApplication, PurposeFramework, PurposeLibrary, PurposeContainer,
	PurposeOperatingSystem, PurposeDevice, PurposeFirmware, PurposeSource,
	PurposeArchive, PurposeFile, PurposeInstall, PurposeData, PurposeOther,
}

func (p *Purpose) UnmarshalText(b []byte) error {
	return parseEnum(b, purposes, p, "purpose")
}

// HashAlgorithm names a digest algorithm. The declaration order below is the
// canonical emission order.
type HashAlgorithm string

const (
	HashMD2        HashAlgorithm = "MD2"
	HashMD4        HashAlgorithm = "MD4"
	HashMD5        HashAlgorithm = "MD5"
	HashMD6        HashAlgorithm = "MD6"
	HashSHA1       HashAlgorithm = "SHA1"
	HashSHA224     HashAlgorithm = "SHA224"
	HashSHA256     HashAlgorithm = "SHA256"
	HashSHA384     HashAlgorithm = "SHA384"
	HashSHA512     HashAlgorithm = "SHA512"
	HashSHA3_256   HashAlgorithm = "SHA3_256"
	HashSHA3_384   HashAlgorithm = "SHA3_384"
	HashSHA3_512   HashAlgorithm = "SHA3_512"
	HashBLAKE2B256 HashAlgorithm = "BLAKE2B_256"
	HashBLAKE2B384 HashAlgorithm = "BLAKE2B_384"
	HashBLAKE2B512 HashAlgorithm = "BLAKE2B_512"
	HashBLAKE3     HashAlgorithm = "BLAKE3"
	HashADLER32    HashAlgorithm = "ADLER32"
)

// HashAlgorithms lists every known algorithm in canonical order.
var HashAlgorithms = []HashAlgorithm{
	HashMD2, HashMD4, HashMD5, HashMD6,
	HashSHA1, HashSHA224, HashSHA256, HashSHA384, HashSHA512,
	HashSHA3_256, HashSHA3_384, HashSHA3_512,
	HashBLAKE2B256, HashBLAKE2B384, HashBLAKE2B512, HashBLAKE3,
	HashADLER32,
}

func (h *HashAlgorithm) UnmarshalText(b []byte) error {
	return parseEnum(b, HashAlgorithms, h, "hash algorithm")
}

// IdentifierType names a software identifier scheme.
type IdentifierType string

const (
	IdentifierPURL   IdentifierType = "PURL"
	IdentifierCPE22  IdentifierType = "CPE22"
	IdentifierCPE23  IdentifierType = "CPE23"
	IdentifierGitoid IdentifierType = "GITOID"
)

var identifierTypes = []IdentifierType{IdentifierPURL, IdentifierCPE22, IdentifierCPE23, IdentifierGitoid}

func (t *IdentifierType) UnmarshalText(b []byte) error {
	return parseEnum(b, identifierTypes, t, "identifier type")
}

// RelationshipType is the type of a directed edge. Values follow the SPDX 2.3
// relationship vocabulary.
type RelationshipType string

const (
	RelDescribes            RelationshipType = "DESCRIBES"
	RelDescribedBy          RelationshipType = "DESCRIBED_BY"
	RelContains             RelationshipType = "CONTAINS"
	RelContainedBy          RelationshipType = "CONTAINED_BY"
	RelDependsOn            RelationshipType = "DEPENDS_ON"
	RelDependencyOf         RelationshipType = "DEPENDENCY_OF"
	RelBuildToolOf          RelationshipType = "BUILD_TOOL_OF"
	RelDevDependencyOf      RelationshipType = "DEV_DEPENDENCY_OF"
	RelOptionalDependencyOf RelationshipType = "OPTIONAL_DEPENDENCY_OF"
	RelProvidedDependencyOf RelationshipType = "PROVIDED_DEPENDENCY_OF"
	RelRuntimeDependencyOf  RelationshipType = "RUNTIME_DEPENDENCY_OF"
	RelGeneratedFrom        RelationshipType = "GENERATED_FROM"
	RelGenerates            RelationshipType = "GENERATES"
	RelAncestorOf           RelationshipType = "ANCESTOR_OF"
	RelDescendantOf         RelationshipType = "DESCENDANT_OF"
	RelVariantOf            RelationshipType = "VARIANT_OF"
	RelDynamicLink          RelationshipType = "DYNAMIC_LINK"
	RelStaticLink           RelationshipType = "STATIC_LINK"
	RelPrerequisiteFor      RelationshipType = "PREREQUISITE_FOR"
	RelHasPrerequisite      RelationshipType = "HAS_PREREQUISITE"
	RelOther                RelationshipType = "OTHER"
)

// RelationshipTypes lists every known relationship type.
var RelationshipTypes = []RelationshipType{
	RelDescribes, RelDescribedBy, RelContains, RelContainedBy,
	RelDependsOn, RelDependencyOf, RelBuildToolOf, RelDevDependencyOf,
	RelOptionalDependencyOf, RelProvidedDependencyOf, RelRuntimeDependencyOf,
	RelGeneratedFrom, RelGenerates, RelAncestorOf, RelDescendantOf,
	RelVariantOf, RelDynamicLink, RelStaticLink, RelPrerequisiteFor,
	RelHasPrerequisite, RelOther,
}

func (t *RelationshipType) UnmarshalText(b []byte) error {
	return parseEnum(b, RelationshipTypes, t, "relationship type")
}

// PersonKind tells a natural person from an organization.
type PersonKind string

const (
	PersonKindPerson       PersonKind = "PERSON"
	PersonKindOrganization PersonKind = "ORGANIZATION"
)

func (k *PersonKind) UnmarshalText(b []byte) error {
	return parseEnum(b, []PersonKind{PersonKindPerson, PersonKindOrganization}, k, "person kind")
}

func parseEnum[T ~string](b []byte, known []T, dst *T, what string) error {
	v := T(b)
	if !slices.Contains(known, v) {
		return fmt.Errorf("unknown %s %q", what, string(b))
	}
	*dst = v
	return nil
}
