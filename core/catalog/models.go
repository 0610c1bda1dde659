package catalog

// Product is one previously exported canonical product. The allocator reuses
// its code when a product with the identical canonical name shows up again.
type Product struct {
	ID       uint   `gorm:"column:id;primaryKey"`
	Code     string `gorm:"column:code;uniqueIndex;size:16"`
	Name     string `gorm:"column:name;index;size:255"`
	Type     string `gorm:"column:type;size:255"`
	Brand    string `gorm:"column:brand;size:255"`
	Model    string `gorm:"column:model;size:255"`
	Category string `gorm:"column:category;size:255"`
	// Price and ListPrice are the merged prices at export time.
	Price     float64 `gorm:"column:price"`
	ListPrice float64 `gorm:"column:list_price"`
	// OriginalNames and SourceURLs are the delimiter-joined provenance sets.
	OriginalNames string `gorm:"column:original_names;type:text"`
	SourceURLs    string `gorm:"column:source_urls;type:text"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "products"
}

// ProductVariant is one previously exported variant. The allocator reuses its
// code when a variant of the same product has an identical attribute-pair set.
type ProductVariant struct {
	ID        uint   `gorm:"column:id;primaryKey"`
	ProductID uint   `gorm:"column:product_id;index"`
	Code      string `gorm:"column:code;uniqueIndex;size:24"`
	// AttributeKey is the order-independent fingerprint of the variant's
	// attribute-pair set, as computed by the merge engine.
	AttributeKey string `gorm:"column:attribute_key;size:512"`
	// Attributes is the human-readable attribute listing.
	Attributes  string  `gorm:"column:attributes;size:512"`
	Price       float64 `gorm:"column:price"`
	ListPrice   float64 `gorm:"column:list_price"`
	StockStatus string  `gorm:"column:stock_status;size:64"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
