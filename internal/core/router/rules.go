package router

import "opsroute/internal/core/params"

// Intent groups shared by DefaultRules and the SQL builder
var (
	DocumentIntents    = []string{"safety_incidents", "sop_procedure", "maintenance_schedule"}
	AdviceIntents      = []string{"delay_reasons", "best_practices"}
	ShiftIntents       = []string{"shift_comparison", "shift_production"}
	EquipmentIntents   = []string{"equipment_status", "equipment_production"}
	ModerateSQLIntents = []string{
		"daily_trend", "production_summary", "equipment_list", "trip_details",
		"production_efficiency", "monthly_report", "cost_analysis",
	}
	RetrievalIntents   = []string{"data_retrieval", "time_based_query", "equipment_query"}
)

// DefaultRules returns the routing table; specificAgg is the catalog's aggregation.specific list
func DefaultRules(specificAgg []string) []Rule {
	aggregations := append([]string{"material_breakdown", "location_production", "maintenance_history"}, specificAgg...)
	return []Rule{
		{
			Name: "combination", Intents: []string{"equipment_combination"},
			MinConfidence: MinSpecialized, Task: TaskOptimize, Floor: FloorSpecialized,
			Template: "optimize.combination", Reason: "%s: excavator/tipper pairing (%s) via rule %s",
		},
		{
			Name: "comparison", Intents: []string{"equipment_comparison"},
			MinConfidence: MinSpecialized, Guard: AtLeast(params.ParamEquipmentIDs, 2),
			Task: TaskSQL, Floor: FloorExact,
			Template: "compare_equipment", Reason: "%s: side-by-side metrics for %s via rule %s",
		},
		{
			Name: "equipment_id", Intents: EquipmentIntents,
			MinConfidence: MinSpecialized, Guard: Exactly(params.ParamEquipmentIDs, 1),
			Task: TaskSQL, Floor: FloorExact,
			Template: "equipment_lookup", Reason: "%s: single equipment lookup (%s) via rule %s",
		},
		{
			Name: "optimization", Intents: []string{"equipment_optimization"},
			MinConfidence: MinSpecialized, Task: TaskOptimize, Floor: FloorSpecialized,
			Template: "optimize.allocation", Reason: "%s: fleet optimization (%s) via rule %s",
		},
		{
			Name: "forecast", Intents: []string{"production_forecast"},
			MinConfidence: MinSpecialized, Task: TaskOptimize, Floor: FloorSpecialized,
			Template: "optimize.forecast", Reason: "%s: production forecast (%s) via rule %s",
		},
		{
			Name: "documents", Intents: DocumentIntents,
			MinConfidence: MinSpecialized, Task: TaskRAG, Floor: FloorSpecialized,
			Template: "rag.documents", Reason: "%s: document search (%s) via rule %s",
		},
		{
			Name: "ranking", Intents: []string{"equipment_ranking"},
			MinConfidence: MinSpecialized, Guard: AnyOf(params.ParamRankType, params.ParamN),
			Task: TaskSQL, Floor: FloorSpecialized,
			Template: "rank_equipment", Reason: "%s: ranked equipment (%s) via rule %s",
		},
		{
			Name: "shift", Intents: ShiftIntents,
			MinConfidence: MinSpecialized, Task: TaskSQL, Floor: FloorSpecialized,
			Template: "shift_breakdown", Reason: "%s: per-shift metrics (%s) via rule %s",
		},
		{
			Name: "row_lookup", Intents: []string{"specific_row"},
			MinConfidence: MinSpecialized, Guard: AtLeast(params.ParamRowNumber, 1),
			Task: TaskSQL, Floor: FloorSpecialized,
			Template: "row_lookup", Reason: "%s: single record (%s) via rule %s",
		},
		{
			Name: "specific_aggregation", Intents: aggregations,
			MinConfidence: MinSpecialized, Task: TaskSQL, Floor: FloorSpecialized,
			Template: "aggregate_metric", Reason: "%s: metric aggregation (%s) via rule %s",
		},
		{
			Name: "moderate_sql", Intents: ModerateSQLIntents,
			MinConfidence: MinModerate, Task: TaskSQL, Floor: FloorGeneric,
			Template: "moderate_report", Reason: "%s: report query (%s) via rule %s",
		},
		{
			Name: "advice", Intents: AdviceIntents,
			MinConfidence: MinModerate, Task: TaskRAG, Floor: FloorGeneric,
			Template: "rag.advice", Reason: "%s: knowledge search (%s) via rule %s",
		},
		{
			Name: "aggregation", Intents: []string{"aggregation_query"},
			MinConfidence: MinModerate, Task: TaskSQL, Floor: FloorGeneric,
			Template: "aggregate_metric", Reason: "%s: generic aggregation (%s) via rule %s",
		},
		{
			Name: "general_question", Intents: []string{"general_question"},
			MinConfidence: MinGeneric, Task: TaskRAG, Floor: FloorGeneric,
			Template: "rag.general", Reason: "%s: general knowledge (%s) via rule %s",
		},
		{
			Name: "data_retrieval", Intents: RetrievalIntents,
			MinConfidence: MinGeneric, Task: TaskSQL, Floor: FloorGeneric,
			Template: "retrieve_rows", Reason: "%s: row retrieval (%s) via rule %s",
		},
	}
}
