package docstore

import "testing"

func TestDocumentClone_DeepCopiesNestedData(t *testing.T) {
	orig := Document{
		ID:       "o1",
		TenantID: "loja-1",
		Data: map[string]any{
			"customerName": "Carla",
			"items": []any{
				map[string]any{"productId": "p1", "quantity": float64(2)},
			},
			"address": map[string]any{"city": "Campinas"},
		},
	}

	clone := orig.Clone()
	clone.Data["customerName"] = "mutated"
	clone.Data["items"].([]any)[0].(map[string]any)["quantity"] = float64(99)
	clone.Data["address"].(map[string]any)["city"] = "mutated"

	if orig.Data["customerName"] != "Carla" {
		t.Error("top-level mutation leaked into the original")
	}
	if q := orig.Data["items"].([]any)[0].(map[string]any)["quantity"]; q != float64(2) {
		t.Errorf("nested slice mutation leaked into the original, quantity = %v", q)
	}
	if c := orig.Data["address"].(map[string]any)["city"]; c != "Campinas" {
		t.Errorf("nested map mutation leaked into the original, city = %v", c)
	}

	// And the other direction: mutating the original must not touch clones.
	orig.Data["address"].(map[string]any)["city"] = "changed"
	if clone.Data["address"].(map[string]any)["city"] != "mutated" {
		t.Error("original mutation leaked into the clone")
	}
}

func TestDocumentClone_NilData(t *testing.T) {
	clone := Document{ID: "o1"}.Clone()
	if clone.Data != nil {
		t.Errorf("expected nil data to stay nil, got %v", clone.Data)
	}
}
