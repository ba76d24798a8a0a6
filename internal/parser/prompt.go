package parser

// BuildReceiptPrompt returns the extraction prompt for a purchase receipt.
func BuildReceiptPrompt(sourceTag string) string {
	return `You are a receipt data extraction assistant. Analyze the provided ` + describeSource(sourceTag) + ` and extract the purchase into the following JSON structure.

IMPORTANT INSTRUCTIONS:
- "total" is the final amount actually paid, after discounts and including tax.
- Normalize the purchase date to YYYY-MM-DD. Use an empty string if no date is printed.
- "currency" is a 3-letter ISO 4217 code. Use an empty string if it cannot be determined.
- "category" is a short spending category in English (e.g. Groceries, Restaurants, Transport).
- Extract every purchased position into "items". Do not invent positions that are not printed.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, just the raw JSON object.

Return two top-level keys: "data" and "confidence_scores".

The "data" object must follow this schema:
{
  "total": 0,
  "currency": "",
  "date": "",
  "merchant": "",
  "category": "",
  "description": "",
  "items": [
    {"name": "", "quantity": 0, "price": 0, "total": 0}
  ]
}

The "confidence_scores" object must contain float values between 0.0 and 1.0 for the keys
"total", "date", "merchant" and "category". Use 0.0 for fields not found in the receipt.`
}

func describeSource(sourceTag string) string {
	switch sourceTag {
	case "receipt_photo":
		return "photo of a receipt"
	default:
		return "receipt document"
	}
}
