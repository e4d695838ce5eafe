package minecraft

// Skin is a skin as listed in the Minecraft Services profile
type Skin struct {
	ID      string `json:"id"`
	State   string `json:"state"`
	URL     string `json:"url"`
	Variant string `json:"variant"`
	Alias   string `json:"alias,omitempty"`
}

// Cape is a cape as listed in the Minecraft Services profile
type Cape struct {
	ID    string `json:"id"`
	State string `json:"state"`
	URL   string `json:"url"`
	Alias string `json:"alias,omitempty"`
}

// Profile is the authoritative identity of a Microsoft account in the game
type Profile struct {
	// ID is the players UUID (Minecraft Services returns it without dashes)
	ID    string `json:"id"`
	Name  string `json:"name"`
	Skins []Skin `json:"skins"`
	Capes []Cape `json:"capes"`
}

// ActiveSkin returns the skin in state "ACTIVE" or nil
func (p *Profile) ActiveSkin() *Skin {
	for i := range p.Skins {
		if p.Skins[i].State == "ACTIVE" {
			return &p.Skins[i]
		}
	}
	return nil
}
