// Package normalize maps hash algorithms and license fields between the
// Document model and each wire format, and records what a conversion had to
// drop along the way.
package normalize

import (
	"strings"

	"github.com/StinkyLord/sbomconv/sbom"
)

// Format names a wire format family.
type Format string

const (
	SPDX      Format = "spdx"
	CycloneDX Format = "cyclonedx"
)

var spdxHashes = map[sbom.HashAlgorithm]string{
	sbom.HashMD2:        "MD2",
	sbom.HashMD4:        "MD4",
	sbom.HashMD5:        "MD5",
	sbom.HashMD6:        "MD6",
	sbom.HashSHA1:       "SHA1",
	sbom.HashSHA224:     "SHA224",
	sbom.HashSHA256:     "SHA256",
	sbom.HashSHA384:     "SHA384",
	sbom.HashSHA512:     "SHA512",
	sbom.HashSHA3_256:   "SHA3-256",
	sbom.HashSHA3_384:   "SHA3-384",
	sbom.HashSHA3_512:   "SHA3-512",
	sbom.HashBLAKE2B256: "BLAKE2b-256",
	sbom.HashBLAKE2B384: "BLAKE2b-384",
	sbom.HashBLAKE2B512: "BLAKE2b-512",
	sbom.HashBLAKE3:     "BLAKE3",
	sbom.HashADLER32:    "ADLER32",
}

// CycloneDX has no MD2, MD4, MD6, SHA224 or ADLER32.
var cdxHashes = map[sbom.HashAlgorithm]string{
	sbom.HashMD5:        "MD5",
	sbom.HashSHA1:       "SHA-1",
	sbom.HashSHA256:     "SHA-256",
	sbom.HashSHA384:     "SHA-384",
	sbom.HashSHA512:     "SHA-512",
	sbom.HashSHA3_256:   "SHA3-256",
	sbom.HashSHA3_384:   "SHA3-384",
	sbom.HashSHA3_512:   "SHA3-512",
	sbom.HashBLAKE2B256: "BLAKE2b-256",
	sbom.HashBLAKE2B384: "BLAKE2b-384",
	sbom.HashBLAKE2B512: "BLAKE2b-512",
	sbom.HashBLAKE3:     "BLAKE3",
}

func hashTable(f Format) map[sbom.HashAlgorithm]string {
	if f == CycloneDX {
		return cdxHashes
	}
	return spdxHashes
}

// HashName returns the format's spelling of algo, and false when the format
// cannot carry it.
func HashName(f Format, algo sbom.HashAlgorithm) (string, bool) {
	name, ok := hashTable(f)[algo]
	return name, ok
}

// ParseHash resolves a format spelling back to the model algorithm. Matching
// ignores case, dashes and underscores, so "sha-256", "SHA256" and "Sha_256"
// all resolve; an algorithm the format itself does not define is still
// refused.
func ParseHash(f Format, name string) (sbom.HashAlgorithm, bool) {
	want := squash(name)
	for algo, spelled := range hashTable(f) {
		if squash(spelled) == want {
			return algo, true
		}
	}
	return "", false
}

func squash(s string) string {
	s = strings.ToUpper(s)
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
