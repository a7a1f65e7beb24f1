package plans

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTierOrdering(t *testing.T) {
	t.Parallel()

	require.Less(t, Starter, Growth)
	require.Less(t, Growth, Scale)
	require.Less(t, Scale, Enterprise)
	require.False(t, Enterprise.SelfService())
	require.True(t, Scale.SelfService())
}

func TestParseTier(t *testing.T) {
	t.Parallel()

	cases := map[string]Tier{
		"starter":    Starter,
		"Growth":     Growth,
		" scale ":    Scale,
		"ENTERPRISE": Enterprise,
	}
	for in, want := range cases {
		got, err := ParseTier(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got)
	}

	_, err := ParseTier("platinum")
	require.Error(t, err)
	require.Equal(t, Starter, TierOrDefault("platinum"))
}

func TestTierTextRoundTrip(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(map[string]Tier{"tier": Growth})
	require.NoError(t, err)
	require.JSONEq(t, `{"tier":"growth"}`, string(raw))

	var decoded struct {
		Tier Tier `json:"tier"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tier":"scale"}`), &decoded))
	require.Equal(t, Scale, decoded.Tier)
	require.Error(t, json.Unmarshal([]byte(`{"tier":"gold"}`), &decoded))
}

func TestMaxLines(t *testing.T) {
	t.Parallel()

	require.Equal(t, LineCap(30), MaxLines(Starter))
	require.Equal(t, LineCap(60), MaxLines(Growth))
	require.Equal(t, LineCap(100), MaxLines(Scale))
	require.True(t, MaxLines(Enterprise).IsUnlimited())
	require.Equal(t, LineCap(30), CapForName("legacy-tier"))
	require.Equal(t, LineCap(30), MaxLines(Tier(42)))
}

func TestLineCapJSON(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(struct {
		Max LineCap `json:"maxLines"`
	}{Max: Unlimited})
	require.NoError(t, err)
	require.JSONEq(t, `{"maxLines":null}`, string(raw))

	raw, err = json.Marshal(LineCap(60))
	require.NoError(t, err)
	require.Equal(t, "60", string(raw))

	var c LineCap
	require.NoError(t, json.Unmarshal([]byte("null"), &c))
	require.True(t, c.IsUnlimited())

	require.Nil(t, Unlimited.Ptr())
	require.Equal(t, 30, *LineCap(30).Ptr())
	require.Equal(t, LineCap(30), CapFromPtr(LineCap(30).Ptr()))
	require.True(t, CapFromPtr(nil).IsUnlimited())
	require.True(t, Unlimited.Allows(10_000))
	require.False(t, LineCap(30).Allows(31))
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(map[Tier]Price{
		Starter: {ID: "price_s", ProductID: "prod_s"},
		Growth:  {ID: "price_g", ProductID: "prod_g"},
		Scale:   {ID: "price_x", ProductID: "prod_x"},
	})
	require.NoError(t, err)
	return c
}

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)

	p, err := c.PriceFor(Growth)
	require.NoError(t, err)
	require.Equal(t, "price_g", p.ID)

	_, err = c.PriceFor(Enterprise)
	require.ErrorIs(t, err, ErrNoPrice)

	tier, ok := c.TierForPrice("price_x", "")
	require.True(t, ok)
	require.Equal(t, Scale, tier)

	tier, ok = c.TierForPrice("price_unknown", "prod_g")
	require.True(t, ok)
	require.Equal(t, Growth, tier)

	// price id wins over product id
	tier, ok = c.TierForPrice("price_s", "prod_x")
	require.True(t, ok)
	require.Equal(t, Starter, tier)

	_, ok = c.TierForPrice("nope", "nope")
	require.False(t, ok)
}

func TestNewCatalogRejectsInvalidTables(t *testing.T) {
	t.Parallel()

	_, err := NewCatalog(map[Tier]Price{Enterprise: {ID: "price_e"}})
	require.Error(t, err)

	_, err = NewCatalog(map[Tier]Price{Starter: {ID: " "}})
	require.Error(t, err)

	_, err = NewCatalog(map[Tier]Price{
		Starter: {ID: "price_dup"},
		Growth:  {ID: "price_dup"},
	})
	require.Error(t, err)
}

func TestLoadCatalogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"tiers": {
			"starter": {"priceId": "price_s", "productId": "prod_s"},
			"growth": {"priceId": "price_g"}
		}
	}`), 0o600))

	c, err := LoadCatalogFile(path)
	require.NoError(t, err)
	p, err := c.PriceFor(Starter)
	require.NoError(t, err)
	require.Equal(t, "prod_s", p.ProductID)
}

func TestParseCatalogSchemaViolations(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"enterprise tier":  `{"tiers": {"enterprise": {"priceId": "p"}}}`,
		"missing price id": `{"tiers": {"starter": {"productId": "p"}}}`,
		"empty tiers":      `{"tiers": {}}`,
		"unknown field":    `{"tiers": {"starter": {"priceId": "p"}}, "extra": 1}`,
		"not json":         `tiers:`,
	}
	for name, raw := range cases {
		_, err := ParseCatalog([]byte(raw))
		require.Error(t, err, name)
	}
}
