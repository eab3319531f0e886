package converter

type ProductInfoRedisModel struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	CategoryName string `json:"category_name"`
	Price        int64  `json:"price"`
	Stock        int64  `json:"stock"`
	WhereToUse   string `json:"where_to_use,omitempty"`
	Description  string `json:"description,omitempty"`
	ImageKey     string `json:"image_key,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}
