package llm

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// WarehouseSchema describes the tables the deterministic builder targets
const WarehouseSchema = `production_data(date, shift, equipment_id, machine_type, material, location, tonnage, trips, distance_km, fuel_liters, operating_hours, downtime_hours, cycle_time_min)
trip_summary(date, shift, tipper_id, excavator_id, trip_count, tonnage)
equipment(equipment_id, machine_type, capacity_tons, status, site)
maintenance_log(date, equipment_id, downtime_hours, reason, cost)
fuel_log(date, shift, equipment_id, liters)`

const decideSystem = `You route questions about mine operations.
Choose exactly one task:
- sql: the answer is a number, list or table computed from the warehouse
- rag: the answer lives in documents (procedures, safety, manuals, general advice)
- optimize: the question asks for an allocation, combination or forecast
Reply with a JSON object only: {"task": "...", "confidence": 0.0-1.0, "explanation": "...", "intent": "..."}.`

const sqlSystem = `You write PostgreSQL for a mine operations warehouse.
Return one SELECT statement and nothing else. No comments, no semicolons inside, no data changes.
Shifts are 'A', 'B' and 'C'. Equipment ids look like 'EX-12'. Dates are ISO yyyy-mm-dd.`

// maxHistory caps the turns forwarded to the model
const maxHistory = 6

func schemaOf(s string) string {
	if strings.TrimSpace(s) == "" {
		return WarehouseSchema
	}
	return s
}

func hints(intent, summary string) string {
	var sb strings.Builder
	if intent != "" {
		fmt.Fprintf(&sb, "Classifier guess: %s\n", intent)
	}
	if summary != "" && summary != "none" {
		fmt.Fprintf(&sb, "Extracted parameters: %s\n", summary)
	}
	return sb.String()
}

func history(h []Turn) []openai.ChatCompletionMessage {
	if len(h) > maxHistory {
		h = h[len(h)-maxHistory:]
	}
	out := make([]openai.ChatCompletionMessage, 0, len(h))
	for _, t := range h {
		role := openai.ChatMessageRoleUser
		if t.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}
	return out
}

func decideMessages(r DecideRequest) []openai.ChatCompletionMessage {
	msgs := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: decideSystem + "\n\nTables:\n" + schemaOf(r.Schema),
	}}
	msgs = append(msgs, history(r.History)...)
	return append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: hints(r.Intent, r.Params.Summary()) + "Question: " + r.Question,
	})
}

func sqlMessages(r SQLRequest) []openai.ChatCompletionMessage {
	msgs := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: sqlSystem + "\n\nTables:\n" + schemaOf(r.Schema),
	}}
	msgs = append(msgs, history(r.History)...)
	return append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: hints(r.Intent, r.Params.Summary()) + "Question: " + r.Question,
	})
}
