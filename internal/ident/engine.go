package ident

// EngineName identifies this converter in the documents it writes.
const EngineName = "sbomconv"

// EngineVersion is stamped at build time with
// -ldflags "-X github.com/StinkyLord/sbomconv/internal/ident.EngineVersion=...".
var EngineVersion = "devel"
