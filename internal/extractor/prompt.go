package extractor

// BuildReceiptPrompt returns the instruction sent to generative providers.
// The requested shape matches Document AI's entity JSON so every provider
// feeds the same pipeline input.
func BuildReceiptPrompt() string {
	return `You are a receipt data extraction assistant. Read the attached receipt and report every recognized field as an entity.

Return ONLY valid JSON with no markdown formatting and no code fences, shaped exactly like:
{
  "entities": [
    {"type": "supplier_name", "mentionText": "", "confidence": 0.0}
  ],
  "text": ""
}

Entity types to use:
- "supplier_name" for the merchant or store name, as printed
- "receipt_date" for the purchase date, as printed
- "total_amount" for the final amount paid, including the currency symbol as printed
- "category" for one of: Food, Transport, Groceries, Entertainment, Shopping, Health, Education
- "line_item" once per purchased item line, in the order printed

Rules:
- "mentionText" must be copied from the receipt, not reformatted.
- "confidence" is your certainty between 0 and 1.
- List entities in reading order, top to bottom.
- Omit an entity you cannot find instead of guessing; use an empty "entities" array if nothing is legible.
- "text" is the full recognized text of the receipt with line breaks preserved.`
}
