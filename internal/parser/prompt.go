package parser

import "fmt"

// SystemPrompt primes the model for pharmaceutical name parsing.
const SystemPrompt = "You are an expert in parsing medical product names and understanding pharmaceutical formulations. Extract components accurately."

// BuildExtractionPrompt returns the extraction prompt for a single medicine
// descriptor.
func BuildExtractionPrompt(medicineName string) string {
	return fmt.Sprintf(`Given the medicine name %q, extract the following components:
1. Medicine name (without strength and formulation)
2. Strength (with units)
3. Formulation
4. If it's a patch, what is its duration in hours or days?

Return the result in JSON format like this:
{
    "name": "medicine name",
    "strength": "strength with units",
    "formulation": "formulation type",
    "duration": "X hours or Y days for patches"
}

Be precise and only include exact information from the input, except for patch duration which can come from medical knowledge. Return ONLY the JSON object.`, medicineName)
}
