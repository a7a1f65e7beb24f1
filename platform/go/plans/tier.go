package plans

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tier is a named service plan. The declaration order is the plan order, so
// upgrade/downgrade comparisons are plain integer comparisons.
type Tier int

const (
	Starter Tier = iota
	Growth
	Scale
	Enterprise
)

var tierNames = [...]string{
	Starter:    "starter",
	Growth:     "growth",
	Scale:      "scale",
	Enterprise: "enterprise",
}

// AllTiers lists every tier in plan order.
var AllTiers = []Tier{Starter, Growth, Scale, Enterprise}

func (t Tier) String() string {
	if t < Starter || t > Enterprise {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// Valid reports whether t is one of the declared tiers.
func (t Tier) Valid() bool {
	return t >= Starter && t <= Enterprise
}

// SelfService reports whether the tier can be bought or changed without sales.
func (t Tier) SelfService() bool {
	return t.Valid() && t != Enterprise
}

// ParseTier converts a tier name into a Tier.
func ParseTier(s string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range tierNames {
		if n == name {
			return Tier(i), nil
		}
	}
	return Starter, fmt.Errorf("unknown tier %q", s)
}

// TierOrDefault parses s and falls back to Starter for unknown names.
func TierOrDefault(s string) Tier {
	t, err := ParseTier(s)
	if err != nil {
		return Starter
	}
	return t
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tier %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	parsed, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// LineCap bounds the number of active production lines. Unlimited is encoded as -1
// and serialised as JSON null.
type LineCap int

const Unlimited LineCap = -1

var tierCaps = map[Tier]LineCap{
	Starter:    30,
	Growth:     60,
	Scale:      100,
	Enterprise: Unlimited,
}

// IsUnlimited reports whether the cap has no bound.
func (c LineCap) IsUnlimited() bool {
	return c < 0
}

// Allows reports whether n active lines fit under the cap.
func (c LineCap) Allows(n int) bool {
	return c.IsUnlimited() || n <= int(c)
}

func (c LineCap) MarshalJSON() ([]byte, error) {
	if c.IsUnlimited() {
		return []byte("null"), nil
	}
	return json.Marshal(int(c))
}

func (c *LineCap) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = Unlimited
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = LineCap(n)
	return nil
}

// Ptr returns the cap as a nullable integer for storage; nil means unlimited.
func (c LineCap) Ptr() *int {
	if c.IsUnlimited() {
		return nil
	}
	n := int(c)
	return &n
}

// CapFromPtr is the inverse of Ptr.
func CapFromPtr(n *int) LineCap {
	if n == nil {
		return Unlimited
	}
	return LineCap(*n)
}

// MaxLines returns the line cap for a tier. Unknown tiers get the starter cap.
func MaxLines(t Tier) LineCap {
	if c, ok := tierCaps[t]; ok {
		return c
	}
	return tierCaps[Starter]
}

// CapForName returns the line cap for a stored tier name, defaulting to starter.
func CapForName(name string) LineCap {
	return MaxLines(TierOrDefault(name))
}
