package game

import (
	"fmt"
	"strings"
)

// ResourceType represents a type of resource.
type ResourceType int

const (
	ResourceNone ResourceType = iota
	ResourceTree
	ResourceClay
	ResourceWool
	ResourceCrop
	ResourceIron
	ResourceDesert
)

// String returns the resource name.
func (r ResourceType) String() string {
	switch r {
	case ResourceTree:
		return "Tree"
	case ResourceClay:
		return "Clay"
	case ResourceWool:
		return "Wool"
	case ResourceCrop:
		return "Crop"
	case ResourceIron:
		return "Iron"
	case ResourceDesert:
		return "Desert"
	default:
		return "None"
	}
}

// IsProducing returns true if tiles of this type yield resources to players.
func (r ResourceType) IsProducing() bool {
	return r >= ResourceTree && r <= ResourceIron
}

// AllResources returns the producing resource types in display order.
func AllResources() []ResourceType {
	return []ResourceType{ResourceTree, ResourceClay, ResourceWool, ResourceCrop, ResourceIron}
}

// ParseResource converts a resource name (case-insensitive) to its type.
func ParseResource(name string) (ResourceType, bool) {
	for _, r := range AllResources() {
		if strings.EqualFold(r.String(), name) {
			return r, true
		}
	}
	return ResourceNone, false
}

// MarshalText encodes the resource as its lowercase name.
func (r ResourceType) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(r.String())), nil
}

// UnmarshalText decodes a resource name.
func (r *ResourceType) UnmarshalText(b []byte) error {
	for t := ResourceNone; t <= ResourceDesert; t++ {
		if strings.EqualFold(t.String(), string(b)) {
			*r = t
			return nil
		}
	}
	return fmt.Errorf("unknown resource %q", b)
}

// Hand is a player's resource ledger. Counts are never negative.
type Hand struct {
	Tree int `json:"tree"`
	Clay int `json:"clay"`
	Wool int `json:"wool"`
	Crop int `json:"crop"`
	Iron int `json:"iron"`
}

// NewHand creates an empty hand.
func NewHand() *Hand {
	return &Hand{}
}

func (h *Hand) slot(resource ResourceType) *int {
	switch resource {
	case ResourceTree:
		return &h.Tree
	case ResourceClay:
		return &h.Clay
	case ResourceWool:
		return &h.Wool
	case ResourceCrop:
		return &h.Crop
	case ResourceIron:
		return &h.Iron
	}
	return nil
}

// Add adds resources to the hand. Non-producing types and negative amounts
// are ignored.
func (h *Hand) Add(resource ResourceType, amount int) {
	if amount <= 0 {
		return
	}
	if p := h.slot(resource); p != nil {
		*p += amount
	}
}

// Remove removes resources from the hand. Returns false, leaving the hand
// unchanged, if the balance is insufficient.
func (h *Hand) Remove(resource ResourceType, amount int) bool {
	p := h.slot(resource)
	if p == nil || amount < 0 || *p < amount {
		return false
	}
	*p -= amount
	return true
}

// Get returns the amount of a resource.
func (h *Hand) Get(resource ResourceType) int {
	if p := h.slot(resource); p != nil {
		return *p
	}
	return 0
}

// Total returns the total number of resources.
func (h *Hand) Total() int {
	return h.Tree + h.Clay + h.Wool + h.Crop + h.Iron
}

// IsValid reports whether no count is negative.
func (h Hand) IsValid() bool {
	return h.Tree >= 0 && h.Clay >= 0 && h.Wool >= 0 && h.Crop >= 0 && h.Iron >= 0
}

// BuildCost represents the cost to build something.
type BuildCost struct {
	Tree int
	Clay int
	Wool int
	Crop int
	Iron int
}

// CostRoad is the cost to build a road.
var CostRoad = BuildCost{Tree: 1, Clay: 1}

// CostSettlement is the cost to build a settlement.
var CostSettlement = BuildCost{Tree: 1, Clay: 1, Wool: 1, Crop: 1}

// CostCity is the cost to upgrade a settlement to a city.
var CostCity = BuildCost{Crop: 2, Iron: 3}

// CostDevelopmentCard is the cost to buy a development card.
var CostDevelopmentCard = BuildCost{Wool: 1, Crop: 1, Iron: 1}

// CanAfford checks if a hand can afford a cost.
func (h *Hand) CanAfford(cost BuildCost) bool {
	return h.Tree >= cost.Tree &&
		h.Clay >= cost.Clay &&
		h.Wool >= cost.Wool &&
		h.Crop >= cost.Crop &&
		h.Iron >= cost.Iron
}

// Spend removes resources for a build cost. Returns false if insufficient.
func (h *Hand) Spend(cost BuildCost) bool {
	if !h.CanAfford(cost) {
		return false
	}
	h.Tree -= cost.Tree
	h.Clay -= cost.Clay
	h.Wool -= cost.Wool
	h.Crop -= cost.Crop
	h.Iron -= cost.Iron
	return true
}

// Contains checks if this hand holds at least every count in other.
func (h *Hand) Contains(other Hand) bool {
	return h.CanAfford(BuildCost(other))
}

// AddHand adds every count in other.
func (h *Hand) AddHand(other Hand) {
	h.Tree += other.Tree
	h.Clay += other.Clay
	h.Wool += other.Wool
	h.Crop += other.Crop
	h.Iron += other.Iron
}

// Subtract removes resources based on another hand. Callers check Contains first.
func (h *Hand) Subtract(other Hand) {
	h.Tree -= other.Tree
	h.Clay -= other.Clay
	h.Wool -= other.Wool
	h.Crop -= other.Crop
	h.Iron -= other.Iron
}
