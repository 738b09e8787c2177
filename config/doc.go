// Package config loads serializer settings from TOML.
//
// A file maps onto convert.Options plus the stream settings Encode takes:
//
//	naming_policy   = "camel"   # camel | snake | upper_snake | kebab | none
//	map_key_policy  = "none"
//	escape_html     = true
//	buffer_size     = 4096
//	flush_threshold = 16384     # Buffered policy threshold in bytes
//	suspend_every   = 0         # > 0 also ends chunks after n conversions
//	gzip            = false
//	gzip_level      = 6
//
// Omitted keys keep the convert.Default() values. Unknown keys and
// unknown policy names are rejected.
package config
