package apicontract

import _ "embed"

//go:embed openapi.yml
var specBytes []byte

// GetSpecBytes returns the embedded OpenAPI document of the inventory API.
func GetSpecBytes() []byte {
	return specBytes
}
