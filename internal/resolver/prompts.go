package resolver

import (
	"encoding/json"
	"fmt"

	"github.com/joao-fontenele/motormind/internal/domain"
)

const extractInstruction = `You turn customer vehicle purchase requests into a JSON record.
Reply with exactly one JSON object and nothing else:

{"Model": "string", "location": "string", "Color": "string", "deliveryDays": number}

Rules:
1. No prose, no markdown, no explanation.
2. Use exactly the field names Model, location, Color, deliveryDays.
3. Capitalize model, city and color names ("Hero Super Splendor", "Jodhpur", "Blue").
4. deliveryDays is a number, not a string.
5. When a value is not mentioned use "Unknown" for text fields and 7 for deliveryDays.

Example request: "I want hero super splendor in jodhpur color blue and within 10 days delivery"
Example reply: {"Model": "Hero Super Splendor", "location": "Jodhpur", "Color": "Blue", "deliveryDays": 10}`

const allocateTemplate = `You allocate one vehicle from stock to a customer.
Each unit below sits at a stock location. Pick the unit that reaches the
customer's location in the shortest time, preferring the requested color.

Available units: %s

Reply with exactly one JSON object and nothing else:
{"model": "ZX-150", "location": "Bangalore", "color": "Blue", "eta": "2 days", "uuid": "<id of the chosen unit>"}

Rules:
- Respect the requested color when a unit in that color exists.
- Keep the eta as short as the distance allows.
- The uuid must be the id of one of the units above.`

const recommendTemplate = `The exact model the customer asked for is not in stock.
Suggest the best alternative from the units below, weighing how close each
one is to the request, the delivery distance to the customer and the color.

Available units: %s

Reply with exactly one JSON object and nothing else:
{"model": "ZX-150", "location": "Bangalore", "color": "Blue", "eta": "2 days", "uuid": "<id of the chosen unit>"}

Rules:
- Pick from the units above only.
- The uuid must be the id of the chosen unit.`

const converseInstruction = `You are the MotorMind assistant. You help people find the bike they
want and you know the vehicle market well. You sell bikes, not rides.

Rules:
- Never say you are an AI.
- Casual tone, no markdown.
- Answer in 2 or 3 short sentences, under 20 words in total.
- Have strong opinions about bikes.`

func allocateInstruction(candidates []domain.Vehicle) (string, error) {
	data, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}
	return fmt.Sprintf(allocateTemplate, data), nil
}

func recommendInstruction(candidates []domain.Vehicle) (string, error) {
	data, err := json.Marshal(candidates)
	if err != nil {
		return "", fmt.Errorf("marshal candidates: %w", err)
	}
	return fmt.Sprintf(recommendTemplate, data), nil
}

func requestMessage(req domain.CustomerRequest) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	return string(data), nil
}
