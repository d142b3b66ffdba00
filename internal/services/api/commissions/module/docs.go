package module

import "rategrid/internal/modkit/swaggerkit"

func init() {
	swaggerkit.Register(tagDocs)
}

// tagDocs describes the commissions tags in the served spec
func tagDocs(spec map[string]any) {
	tags, _ := spec["tags"].([]any)
	tags = append(tags,
		map[string]any{"name": "Commissions", "description": "Commission rate records per product slot"},
		map[string]any{"name": "Sessions", "description": "Matrix edit sessions and cascading deletes"},
		map[string]any{"name": "Drafts", "description": "Bulk entry drafts committed in parallel"},
	)
	spec["tags"] = tags
}
