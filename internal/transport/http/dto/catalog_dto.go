package dto

type CatalogItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CatalogResponse struct {
	Zonas  []CatalogItem `json:"zonas"`
	Ritmos []CatalogItem `json:"ritmos"`
}
