package catalog

// SampleDocuments returns documents used to populate an empty collection.
func SampleDocuments(l Listing) []map[string]any {
	switch l.Collection {
	case Products.Collection:
		return []map[string]any{
			{
				"id":          1,
				"title":       "iPhone 15 Pro",
				"price":       999,
				"thumbnail":   "https://images.unsplash.com/photo-1592750475338-74b7b21085ab?w=400",
				"description": "Latest iPhone with advanced features",
				"category":    "Smartphones",
			},
			{
				"id":          2,
				"title":       "MacBook Air M3",
				"price":       1099,
				"thumbnail":   "https://images.unsplash.com/photo-1541807084-5c52b6b3adef?w=400",
				"description": "Powerful laptop for professionals",
				"category":    "laptops",
			},
			{
				"id":          3,
				"title":       "AirPods Pro",
				"price":       8000,
				"thumbnail":   "https://upload.wikimedia.org/wikipedia/commons/2/2f/AirPods_Pro_%282nd_generation%29.jpg",
				"description": "Wireless earbuds with noise cancellation",
				"category":    "mobile accessories",
			},
		}
	case Colleges.Collection:
		return []map[string]any{
			{
				"name":     "All India Institute of Medical Sciences, New Delhi",
				"type":     "GOVT",
				"location": "New Delhi",
				"fees":     5856,
				"cutoff":   map[string]any{"general": 710, "obc": 705, "sc": 680, "st": 670},
			},
			{
				"name":     "Maulana Azad Medical College",
				"type":     "GOVT",
				"location": "New Delhi",
				"fees":     2390,
				"cutoff":   map[string]any{"general": 690, "obc": 684, "sc": 640, "st": 625},
			},
			{
				"name":     "Kasturba Medical College, Manipal",
				"type":     "PRIVATE",
				"location": "Manipal",
				"fees":     1750000,
				"cutoff":   map[string]any{"general": 560, "obc": 545},
			},
			{
				"name":     "Christian Medical College, Vellore",
				"type":     "PRIVATE",
				"location": "Vellore",
				"fees":     52000,
			},
		}
	default:
		return nil
	}
}
