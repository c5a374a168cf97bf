package models

// Catalog describes everything the estimate calculator can price: base
// services, optional add-ons and global modifiers. It is loaded from
// catalog.yaml at startup and never mutated afterwards.
type Catalog struct {
	Currency  string     `yaml:"currency" json:"currency"`
	Services  []Service  `yaml:"services" json:"services"`
	Options   []Option   `yaml:"options" json:"options"`
	Modifiers []Modifier `yaml:"modifiers" json:"modifiers,omitempty"`
}

type Service struct {
	ID        string `yaml:"id" json:"id"`
	Label     string `yaml:"label" json:"label"`
	BasePrice int64  `yaml:"base_price" json:"base_price"`
}

type Option struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description,omitempty"`
	UnitPrice   int64  `yaml:"unit_price" json:"unit_price"`
	MaxQuantity int    `yaml:"max_quantity" json:"max_quantity"`
}

const (
	ModifierFee      = "fee"
	ModifierDiscount = "discount"
)

// Modifier is a global adjustment: a fixed fee (Amount) or a percentage
// discount (Percent). Fees apply before discounts.
type Modifier struct {
	ID      string  `yaml:"id" json:"id"`
	Label   string  `yaml:"label" json:"label"`
	Kind    string  `yaml:"kind" json:"kind"` // fee, discount
	Amount  int64   `yaml:"amount" json:"amount,omitempty"`
	Percent float64 `yaml:"percent" json:"percent,omitempty"`
}

func (c *Catalog) ServiceByID(id string) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

func (c *Catalog) OptionByID(id string) (Option, bool) {
	for _, o := range c.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

func (c *Catalog) ModifierByID(id string) (Modifier, bool) {
	for _, m := range c.Modifiers {
		if m.ID == id {
			return m, true
		}
	}
	return Modifier{}, false
}
