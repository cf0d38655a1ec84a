package catalog

// Rating is the aggregate customer rating shipped with (or synthesized for) a
// product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is one catalog entry. Price is in the smallest currency unit.
type Product struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
	Rating      Rating `json:"rating"`
}

// feedProduct mirrors the upstream feed shape: decimal prices and an optional
// rating block.
type feedProduct struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Rating      *Rating `json:"rating"`
}

type feedResponse struct {
	Products []feedProduct `json:"products"`
}
