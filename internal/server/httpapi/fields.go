package httpapi

// Per-resource field allow-lists. Request bodies are reduced to these
// fields before they reach the store, so a client cannot plant arbitrary
// keys in a document.
var (
	userFields = []string{
		"username", "password", "tel", "avatar", "email",
		"nickname", "gender", "birthday",
	}

	loanPersonFields = []string{
		"name", "tel", "id_card", "id_card_pic_front", "id_card_pic_back",
		"social_code", "stock_percent", "status",
		"address_province", "address_city", "address_district", "address_detail",
		"company_name", "create_user",
	}

	loanCompanyFields = []string{
		"name", "product", "spot_amount", "sell_amount",
		"address_province", "address_city", "address_district", "address_detail",
		"loan_person", "sales_customer",
	}
)

// pick reduces body to the allowed fields, dropping nils and empty strings
// the way the original optional-parameter handling did.
func pick(body map[string]any, allowed []string) map[string]any {
	out := make(map[string]any, len(allowed))
	for _, f := range allowed {
		v, ok := body[f]
		if !ok || v == nil {
			continue
		}
		if str, isStr := v.(string); isStr && str == "" {
			continue
		}
		out[f] = v
	}
	return out
}

func allowed(field string, list []string) bool {
	for _, f := range list {
		if f == field {
			return true
		}
	}
	return false
}
