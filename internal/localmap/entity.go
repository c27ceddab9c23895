package localmap

type Allegiance string

const (
	AllegianceHostile  Allegiance = "hostile"
	AllegianceFriendly Allegiance = "friendly"
	AllegianceNeutral  Allegiance = "neutral"
)

// Entity is a placed NPC token on a room grid. Values are immutable once
// built; movement and damage produce fresh values owned by the caller.
type Entity struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Level         int          `json:"level"`
	Allegiance    Allegiance   `json:"allegiance"`
	Position      TilePosition `json:"position"`
	ImagePath     string       `json:"imagePath,omitempty"`
	CurrentHp     int          `json:"currentHp"`
	MaxHp         int          `json:"maxHp"`
	ThreatRange   *int         `json:"threatRange,omitempty"`
	Incapacitated bool         `json:"incapacitated,omitempty"`
	Dead          bool         `json:"dead,omitempty"`
}

// EffectiveThreatRange resolves the entity's explicit range, falling back to
// the supplied default when none is set.
func (e Entity) EffectiveThreatRange(defaultRange int) int {
	if e.ThreatRange != nil {
		return *e.ThreatRange
	}
	return defaultRange
}

// NPCSeed is the placement input for one NPC: identity already resolved
// upstream, level optional (non-positive means unset).
type NPCSeed struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Hostile   bool   `json:"hostile"`
	ImagePath string `json:"imagePath,omitempty"`
	Level     int    `json:"level,omitempty"`
}

// RoomStub is the slice of a room visible to topology derivation: enough to
// name an exit's destination, nothing more.
type RoomStub struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
