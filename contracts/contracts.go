// Package contracts embeds the HTTP contracts served and enforced by the API.
package contracts

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed billing.yaml
var billingYAML []byte

//go:embed access.yaml
var accessYAML []byte

// Repository paths of the contracts, used as lookup keys.
const (
	BillingPath = "contracts/billing.yaml"
	AccessPath  = "contracts/access.yaml"
)

// BillingYAML returns the raw billing contract.
func BillingYAML() []byte {
	return billingYAML
}

// AccessYAML returns the raw member access contract.
func AccessYAML() []byte {
	return accessYAML
}

// LoadBilling parses and validates the embedded billing contract.
func LoadBilling() (*openapi3.T, error) {
	return load("billing", billingYAML)
}

// LoadAccess parses and validates the embedded member access contract.
func LoadAccess() (*openapi3.T, error) {
	return load("access", accessYAML)
}

func load(name string, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("load %s contract: %w", name, err)
	}
	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate %s contract: %w", name, err)
	}
	return spec, nil
}
