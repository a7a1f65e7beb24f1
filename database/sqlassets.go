package sqlassets

import _ "embed"

//go:embed schema/factories.sql
var FactoriesSQL string

//go:embed schema/profiles.sql
var ProfilesSQL string

// Ordered lists the DDL files in dependency order.
var Ordered = []string{FactoriesSQL, ProfilesSQL}
