package catalog

// ItemOverview is the list/table row shape for an item.
type ItemOverview struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	BasePrice float64 `json:"base_price"`
}

type Variant struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Index int     `json:"index"`
}

type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID      int            `json:"id"`
	ShopID  int            `json:"shop_id"`
	Index   int            `json:"index"`
	Name    string         `json:"name"`
	ItemIDs []int          `json:"item_ids"`
	Items   []ItemOverview `json:"items"`
}

type SubstitutionGroup struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Substitutions []ItemOverview `json:"substitutions"`
}

// Item is the detail shape, overview plus relations.
type Item struct {
	ItemOverview
	Categories         []CategoryRef       `json:"categories"`
	Variants           []Variant           `json:"variants"`
	Addons             []ItemOverview      `json:"addons"`
	SubstitutionGroups []SubstitutionGroup `json:"substitution_groups"`
}

type ItemCreate struct {
	Name                 string  `json:"name" binding:"required,min=1,max=64"`
	BasePrice            float64 `json:"base_price" binding:"min=0"`
	CategoryIDs          []int   `json:"category_ids"`
	SubstitutionGroupIDs []int   `json:"substitution_group_ids"`
	AddonIDs             []int   `json:"addon_ids"`
}

type VariantCreate struct {
	Name  string  `json:"name" binding:"required,min=1,max=64"`
	Price float64 `json:"price" binding:"min=0"`
	Index int     `json:"index"`
}

type CategoryCreate struct {
	Name    string `json:"name" binding:"required,min=1,max=64"`
	Index   int    `json:"index"`
	ItemIDs []int  `json:"item_ids"`
}

type SubstitutionGroupCreate struct {
	Name                string `json:"name" binding:"required,min=1,max=64"`
	SubstitutionItemIDs []int  `json:"substitution_item_ids"`
}
