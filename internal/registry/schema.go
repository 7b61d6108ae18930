package registry

// Schemas are built as generic maps, in two dialects: JSON Schema
// (draft 2020-12 subset) for local validation, and the model's uppercase
// response-schema dialect passed with the generation request. The pairs must
// stay structurally equivalent; the tests cross-check them.

func buildInvoiceValidationSchema() map[string]any {
	invoice := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"invoiceId":    map[string]any{"type": "string", "minLength": 1},
			"serialNumber": nullableString(),
			"customerId":   map[string]any{"type": "string", "minLength": 1},
			"customerName": map[string]any{"type": "string"},
			"productId":    map[string]any{"type": "string", "minLength": 1},
			"productName":  map[string]any{"type": "string"},
			"quantity":     nullableNumber(),
			"tax":          nullableNumber(),
			"totalAmount":  map[string]any{"type": "number"},
			"date":         nullableDate(),
			"currency":     currencyProp(),
		},
		"required": []string{"invoiceId", "customerId", "customerName", "productId", "productName", "totalAmount", "currency"},
	}

	product := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"productId":    map[string]any{"type": "string", "minLength": 1},
			"productName":  map[string]any{"type": "string"},
			"quantity":     nullableNumber(),
			"unitPrice":    nullableNumber(),
			"tax":          nullableNumber(),
			"priceWithTax": nullableNumber(),
			"currency":     currencyProp(),
			"discount":     nullableNumber(),
		},
		"required": []string{"productId", "productName", "currency"},
	}

	customer := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"customerId":          map[string]any{"type": "string", "minLength": 1},
			"customerName":        map[string]any{"type": "string"},
			"phoneNumber":         map[string]any{"type": "string"},
			"totalPurchaseAmount": map[string]any{"type": "number"},
			"currency":            currencyProp(),
		},
		"required": []string{"customerId", "customerName", "totalPurchaseAmount", "currency"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"invoices":  map[string]any{"type": "array", "items": invoice},
			"products":  map[string]any{"type": "array", "items": product},
			"customers": map[string]any{"type": "array", "items": customer},
		},
		"required": []string{"invoices", "products", "customers"},
	}
}

func buildClassificationValidationSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"isPurchaseOrder": map[string]any{"type": "boolean"},
			"confidence": map[string]any{
				"type": "string",
				"enum": []string{"HIGH", "MEDIUM", "LOW"},
			},
		},
		"required": []string{"isPurchaseOrder", "confidence"},
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}

func nullableNumber() map[string]any {
	return map[string]any{"type": []string{"number", "null"}}
}

func nullableDate() map[string]any {
	return map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			map[string]any{"type": "null"},
		},
	}
}

func currencyProp() map[string]any {
	return map[string]any{"type": "string", "minLength": 3, "maxLength": 3}
}

// Model response-schema dialect (uppercase types, nullable flag).

func buildInvoiceResponseSchema() map[string]any {
	invoice := respObject(map[string]any{
		"invoiceId":    respType("STRING", false),
		"serialNumber": respType("STRING", true),
		"customerId":   respType("STRING", false),
		"customerName": respType("STRING", false),
		"productId":    respType("STRING", false),
		"productName":  respType("STRING", false),
		"quantity":     respType("NUMBER", true),
		"tax":          respType("NUMBER", true),
		"totalAmount":  respType("NUMBER", false),
		"date":         respType("STRING", true),
		"currency":     respType("STRING", false),
	}, []string{"invoiceId", "customerId", "customerName", "productId", "productName", "totalAmount", "currency"})

	product := respObject(map[string]any{
		"productId":    respType("STRING", false),
		"productName":  respType("STRING", false),
		"quantity":     respType("NUMBER", true),
		"unitPrice":    respType("NUMBER", true),
		"tax":          respType("NUMBER", true),
		"priceWithTax": respType("NUMBER", true),
		"currency":     respType("STRING", false),
		"discount":     respType("NUMBER", true),
	}, []string{"productId", "productName", "currency"})

	customer := respObject(map[string]any{
		"customerId":          respType("STRING", false),
		"customerName":        respType("STRING", false),
		"phoneNumber":         respType("STRING", false),
		"totalPurchaseAmount": respType("NUMBER", false),
		"currency":            respType("STRING", false),
	}, []string{"customerId", "customerName", "totalPurchaseAmount", "currency"})

	return respObject(map[string]any{
		"invoices":  respArray(invoice),
		"products":  respArray(product),
		"customers": respArray(customer),
	}, []string{"invoices", "products", "customers"})
}

func buildClassificationResponseSchema() map[string]any {
	confidence := respType("STRING", false)
	confidence["enum"] = []string{"HIGH", "MEDIUM", "LOW"}

	return respObject(map[string]any{
		"isPurchaseOrder": respType("BOOLEAN", false),
		"confidence":      confidence,
	}, []string{"isPurchaseOrder", "confidence"})
}

func respObject(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":       "OBJECT",
		"properties": properties,
		"required":   required,
	}
}

func respArray(items map[string]any) map[string]any {
	return map[string]any{"type": "ARRAY", "items": items}
}

func respType(typ string, nullable bool) map[string]any {
	prop := map[string]any{"type": typ}
	if nullable {
		prop["nullable"] = true
	}
	return prop
}
