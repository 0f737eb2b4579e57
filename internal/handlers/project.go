package handlers

import (
	"encoding/json"

	"brewbook/internal/store"
)

// projectEntity renders an entity as a JSON-ready map with the storage
// bookkeeping normalized to snake_case keys. The embedded gorm.Model
// carries no JSON tags, so its fields are renamed here instead of in
// a per-type projection struct.
func projectEntity(e store.Entity) map[string]any {
	raw, err := json.Marshal(e)
	if err != nil {
		return map[string]any{"id": e.Key()}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{"id": e.Key()}
	}

	m["id"] = m["ID"]
	m["created_at"] = m["CreatedAt"]
	m["updated_at"] = m["UpdatedAt"]
	delete(m, "ID")
	delete(m, "CreatedAt")
	delete(m, "UpdatedAt")
	delete(m, "DeletedAt")
	return m
}

func projectEntities[E store.Entity](items []E) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, projectEntity(item))
	}
	return out
}
