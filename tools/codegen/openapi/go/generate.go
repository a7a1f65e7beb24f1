// This file triggers Go code generation from OpenAPI contracts.
// Run manually with:
//   go generate ./tools/codegen/openapi/go
//
// Generates code into /generated/go/<domain>/ following config files
// stored under /tools/codegen/openapi/go/configs/.

package main

//go:generate go tool oapi-codegen -config ./configs/billing.yaml ../../../../contracts/billing.yaml
//go:generate go tool oapi-codegen -config ./configs/access.yaml  ../../../../contracts/access.yaml

func main() {}
