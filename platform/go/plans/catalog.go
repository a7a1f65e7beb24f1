package plans

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Price references the billing provider objects that sell a tier.
type Price struct {
	ID        string `json:"priceId"`
	ProductID string `json:"productId"`
}

// Catalog maps self-service tiers to provider prices. One Catalog instance is shared by
// every billing handler so the tier/price/cap tables cannot drift apart.
type Catalog struct {
	prices map[Tier]Price
}

// ErrNoPrice is returned when a tier has no configured provider price.
var ErrNoPrice = errors.New("no price configured for tier")

// NewCatalog validates the price table. Enterprise is never sold self-service and is
// rejected if present.
func NewCatalog(prices map[Tier]Price) (*Catalog, error) {
	out := make(map[Tier]Price, len(prices))
	seen := make(map[string]Tier, len(prices))
	for tier, price := range prices {
		if !tier.SelfService() {
			return nil, fmt.Errorf("tier %s cannot carry a self-service price", tier)
		}
		price.ID = strings.TrimSpace(price.ID)
		price.ProductID = strings.TrimSpace(price.ProductID)
		if price.ID == "" {
			return nil, fmt.Errorf("tier %s: price id is required", tier)
		}
		if other, dup := seen[price.ID]; dup {
			return nil, fmt.Errorf("price %s is mapped to both %s and %s", price.ID, other, tier)
		}
		seen[price.ID] = tier
		out[tier] = price
	}
	return &Catalog{prices: out}, nil
}

// PriceFor returns the provider price for a tier.
func (c *Catalog) PriceFor(t Tier) (Price, error) {
	p, ok := c.prices[t]
	if !ok {
		return Price{}, fmt.Errorf("%w: %s", ErrNoPrice, t)
	}
	return p, nil
}

// TierForPrice maps a provider price (checked first) or product id back to a tier.
func (c *Catalog) TierForPrice(priceID, productID string) (Tier, bool) {
	if priceID != "" {
		for t, p := range c.prices {
			if p.ID == priceID {
				return t, true
			}
		}
	}
	if productID != "" {
		for t, p := range c.prices {
			if p.ProductID != "" && p.ProductID == productID {
				return t, true
			}
		}
	}
	return Starter, false
}

//go:embed catalog.schema.json
var catalogSchema []byte

type catalogFile struct {
	Tiers map[string]Price `json:"tiers"`
}

// LoadCatalogFile reads a JSON price table, validates it against the embedded schema and
// builds a Catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog is LoadCatalogFile without the filesystem.
func ParseCatalog(raw []byte) (*Catalog, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(catalogSchema)); err != nil {
		return nil, fmt.Errorf("register catalog schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	var document any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := schema.Validate(document); err != nil {
		return nil, fmt.Errorf("catalog validation: %w", err)
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	prices := make(map[Tier]Price, len(file.Tiers))
	for name, price := range file.Tiers {
		tier, err := ParseTier(name)
		if err != nil {
			return nil, err
		}
		prices[tier] = price
	}
	return NewCatalog(prices)
}
